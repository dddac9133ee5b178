package dto

import "time"

type CreateChatSessionRequest struct {
	UserId uint    `json:"user_id" validate:"required"`
	Title  *string `json:"title"`
}

type ChatSessionResponse struct {
	Id        uint      `json:"id"`
	UserId    uint      `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSessionDetailResponse is a session materialized with its messages.
type ChatSessionDetailResponse struct {
	ChatSessionResponse
	Messages []MessageResponse `json:"messages"`
}
