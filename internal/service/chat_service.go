package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/metrics"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	ImplicitSessionTitle = "New Support Chat"
	ApologyReply         = "I'm sorry, I'm having trouble processing your request right now. Please try again later."
)

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	replies    IReplyGenerator
	publisher  IPublisherService
	logger     logger.ILogger
	now        func() time.Time
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	replies IReplyGenerator,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		replies:    replies,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

// Chat runs one support turn. Lookups come first so an unknown user or
// session fails before anything is written. The reply is produced before the
// write transaction opens, then the optional new session and both messages
// commit together. Reply failures are answered with ApologyReply and never
// fail the turn.
func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	userAt := s.now().Truncate(time.Microsecond)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: req.UserId})
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", req.UserId, err)
	}
	if user == nil {
		s.logger.Warn("CHAT", "User not found", map[string]interface{}{"user_id": req.UserId})
		return nil, dto.NewNotFoundError("User")
	}

	var session *entity.ChatSession
	if req.SessionId != nil && *req.SessionId != 0 {
		session, err = uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: *req.SessionId})
		if err != nil {
			return nil, fmt.Errorf("find chat session %d: %w", *req.SessionId, err)
		}
		if session == nil {
			s.logger.Warn("CHAT", "Session not found", map[string]interface{}{
				"user_id":    req.UserId,
				"session_id": *req.SessionId,
			})
			return nil, dto.NewNotFoundError("Session")
		}
	}

	reply, degraded := s.generateReply(ctx, req.Message, user.Id)

	aiAt := s.now().Truncate(time.Microsecond)
	if !aiAt.After(userAt) {
		aiAt = userAt.Add(time.Microsecond)
	}

	newSession := session == nil
	if newSession {
		session = &entity.ChatSession{UserId: user.Id, Title: ImplicitSessionTitle}
	}
	userMsg := &entity.Message{Sender: dto.SenderUser, Content: req.Message, Timestamp: userAt}
	aiMsg := &entity.Message{Sender: dto.SenderAI, Content: reply, Timestamp: aiAt}

	if err := s.persistTurn(ctx, uow, session, newSession, userMsg, aiMsg); err != nil {
		s.logger.Error("CHAT", "Failed to persist chat turn", map[string]interface{}{
			"error":   err,
			"user_id": user.Id,
		})
		return nil, err
	}

	outcome := metrics.OutcomeOK
	if degraded {
		outcome = metrics.OutcomeDegraded
	}
	metrics.ChatTurns.WithLabelValues(outcome).Inc()

	s.announce(ctx, dto.ChatTurnCompletedEvent{
		EventId:       uuid.NewString(),
		UserId:        user.Id,
		SessionId:     session.Id,
		UserMessageId: userMsg.Id,
		AIMessageId:   aiMsg.Id,
		NewSession:    newSession,
		ReplyDegraded: degraded,
		OccurredAt:    aiAt.UnixMilli(),
	})

	return &dto.ChatResponse{
		SessionId: session.Id,
		Message:   reply,
	}, nil
}

func (s *chatService) generateReply(ctx context.Context, prompt string, userId uint) (string, bool) {
	reply, err := s.replies.Generate(ctx, prompt)
	if err == nil && reply != "" {
		return reply, false
	}
	if err == nil {
		err = fmt.Errorf("empty reply")
	}
	s.logger.Warn("CHAT", "Reply generation failed, answering with apology", map[string]interface{}{
		"error":   err.Error(),
		"user_id": userId,
	})
	return ApologyReply, true
}

func (s *chatService) persistTurn(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	session *entity.ChatSession,
	newSession bool,
	userMsg, aiMsg *entity.Message,
) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if newSession {
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return err
		}
	}

	userMsg.SessionId = session.Id
	aiMsg.SessionId = session.Id
	if err := uow.MessageRepository().Create(ctx, userMsg); err != nil {
		return err
	}
	if err := uow.MessageRepository().Create(ctx, aiMsg); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit chat turn: %w", err)
	}
	return nil
}

func (s *chatService) announce(ctx context.Context, evt dto.ChatTurnCompletedEvent) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err == nil {
		err = s.publisher.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn("CHAT", "Failed to publish chat turn event", map[string]interface{}{
			"error":      err.Error(),
			"session_id": evt.SessionId,
		})
	}
}
