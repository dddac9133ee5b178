package service

import (
	"context"
	"encoding/json"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventRelay forwards events outside the process.
type EventRelay interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	relay      EventRelay
	logger     logger.ILogger
}

// NewConsumerService drains chat turn events from the in-process bus. With a
// nil relay events are only logged.
func NewConsumerService(subscriber message.Subscriber, topicName string, relay EventRelay, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		relay:      relay,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: relaying is best effort and a dead relay must
// not make the bus redeliver forever.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.ChatTurnCompletedEvent
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("EVENTS", "Failed to unmarshal chat turn event", map[string]interface{}{
			"error":      err,
			"message_id": msg.UUID,
		})
		return
	}

	cs.logger.Info("EVENTS", "Chat turn completed", map[string]interface{}{
		"event_id":       payload.EventId,
		"user_id":        payload.UserId,
		"session_id":     payload.SessionId,
		"new_session":    payload.NewSession,
		"reply_degraded": payload.ReplyDegraded,
	})

	if cs.relay == nil {
		return
	}

	evt := events.BaseEvent{
		Id:   payload.EventId,
		Type: events.ChatTurnCompleted,
		Data: map[string]interface{}{
			"user_id":         payload.UserId,
			"session_id":      payload.SessionId,
			"user_message_id": payload.UserMessageId,
			"ai_message_id":   payload.AIMessageId,
			"new_session":     payload.NewSession,
			"reply_degraded":  payload.ReplyDegraded,
		},
		OccurredAt: time.UnixMilli(payload.OccurredAt),
	}

	relayCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cs.relay.Publish(relayCtx, evt); err != nil {
		cs.logger.Warn("EVENTS", "Failed to relay chat turn event", map[string]interface{}{
			"error":    err.Error(),
			"event_id": payload.EventId,
		})
	}
}
