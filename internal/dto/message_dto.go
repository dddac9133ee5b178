package dto

import "time"

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

type CreateMessageRequest struct {
	SessionId uint   `json:"session_id" validate:"required"`
	Sender    string `json:"sender" validate:"required,oneof=user ai"`
	Content   string `json:"content" validate:"required"`
}

type MessageResponse struct {
	Id        uint      `json:"id"`
	SessionId uint      `json:"session_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
