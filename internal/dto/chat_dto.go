package dto

// ChatRequest is one turn of the support chat. A missing or zero SessionId
// starts a new session for the user.
type ChatRequest struct {
	UserId    uint   `json:"user_id" validate:"required"`
	SessionId *uint  `json:"session_id"`
	Message   string `json:"message" validate:"required"`
}

type ChatResponse struct {
	SessionId uint   `json:"session_id"`
	Message   string `json:"message"`
}

// ChatTurnCompletedEvent is published after a turn has been committed.
type ChatTurnCompletedEvent struct {
	EventId       string `json:"event_id"`
	UserId        uint   `json:"user_id"`
	SessionId     uint   `json:"session_id"`
	UserMessageId uint   `json:"user_message_id"`
	AIMessageId   uint   `json:"ai_message_id"`
	NewSession    bool   `json:"new_session"`
	ReplyDegraded bool   `json:"reply_degraded"`
	OccurredAt    int64  `json:"occurred_at"`
}
