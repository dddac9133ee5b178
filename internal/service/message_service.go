package service

import (
	"context"
	"fmt"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/internal/repository/unitofwork"
)

type IMessageService interface {
	Create(ctx context.Context, req *dto.CreateMessageRequest) (*dto.MessageResponse, error)
	ListBySession(ctx context.Context, sessionId uint) ([]*dto.MessageResponse, error)
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMessageService(uowFactory unitofwork.RepositoryFactory) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
	}
}

func (s *messageService) Create(ctx context.Context, req *dto.CreateMessageRequest) (*dto.MessageResponse, error) {
	message := &entity.Message{
		SessionId: req.SessionId,
		Sender:    req.Sender,
		Content:   req.Content,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}

	return toMessageResponse(message), nil
}

// ListBySession returns an empty list, not an error, for unknown sessions.
func (s *messageService) ListBySession(ctx context.Context, sessionId uint) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindAll(ctx, messagesOf(sessionId)...)
	if err != nil {
		return nil, fmt.Errorf("list messages of session %d: %w", sessionId, err)
	}

	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageResponse(m))
	}
	return res, nil
}

func messagesOf(sessionId uint) []specification.Specification {
	return append(
		[]specification.Specification{specification.ByChatSessionID{ChatSessionID: sessionId}},
		specification.ChronologicalMessages()...,
	)
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:        m.Id,
		SessionId: m.SessionId,
		Sender:    m.Sender,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

func toMessageResponses(messages []*entity.Message) []dto.MessageResponse {
	res := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, *toMessageResponse(m))
	}
	return res
}
