package service

import (
	"context"
	"fmt"
	"strings"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/internal/repository/unitofwork"
)

const DefaultSessionTitle = "New Chat"

type IChatSessionService interface {
	Create(ctx context.Context, req *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ChatSessionDetailResponse, error)
	List(ctx context.Context, userId *uint) ([]*dto.ChatSessionResponse, error)
}

type chatSessionService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChatSessionService(uowFactory unitofwork.RepositoryFactory) IChatSessionService {
	return &chatSessionService{
		uowFactory: uowFactory,
	}
}

// Create relies on the foreign key to reject unknown users; that surfaces as
// a persistence error, not a not-found.
func (s *chatSessionService) Create(ctx context.Context, req *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error) {
	title := DefaultSessionTitle
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = *req.Title
	}
	session := &entity.ChatSession{UserId: req.UserId, Title: title}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit chat session: %w", err)
	}

	return toChatSessionResponse(session), nil
}

func (s *chatSessionService) GetByID(ctx context.Context, id uint) (*dto.ChatSessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("find chat session %d: %w", id, err)
	}
	if session == nil {
		return nil, dto.NewNotFoundError("Session")
	}

	messages, err := uow.MessageRepository().FindAll(ctx, messagesOf(session.Id)...)
	if err != nil {
		return nil, fmt.Errorf("list messages of session %d: %w", id, err)
	}

	return &dto.ChatSessionDetailResponse{
		ChatSessionResponse: *toChatSessionResponse(session),
		Messages:            toMessageResponses(messages),
	}, nil
}

// List returns sessions newest first, optionally restricted to one user.
func (s *chatSessionService) List(ctx context.Context, userId *uint) ([]*dto.ChatSessionResponse, error) {
	var specs []specification.Specification
	if userId != nil {
		specs = append(specs, specification.UserOwnedBy{UserID: *userId})
	}
	specs = append(specs, specification.NewestSessionsFirst()...)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}

	res := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, toChatSessionResponse(session))
	}
	return res, nil
}

func toChatSessionResponse(s *entity.ChatSession) *dto.ChatSessionResponse {
	return &dto.ChatSessionResponse{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
}
