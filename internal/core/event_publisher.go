package core

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"tng-poetry-backend/internal/models"
	"tng-poetry-backend/pkg/messagequeue"
)

// queueEventPublisher sends review events to a message queue as JSON.
type queueEventPublisher struct {
	mq        messagequeue.MessageQueue
	queueName string
}

// NewQueueEventPublisher creates an EventPublisher backed by a message queue.
func NewQueueEventPublisher(mq messagequeue.MessageQueue, queueName string) EventPublisher {
	return &queueEventPublisher{mq: mq, queueName: queueName}
}

func (p *queueEventPublisher) PublishReviewEvent(ctx context.Context, event models.ReviewEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode review event: %w", err)
	}
	if err := p.mq.Publish(ctx, p.queueName, "application/json", body); err != nil {
		return fmt.Errorf("failed to publish review event to '%s': %w", p.queueName, err)
	}
	return nil
}

// logEventPublisher only records events; used when no broker is configured.
type logEventPublisher struct {
	logger *zap.Logger
}

// NewLogEventPublisher creates an EventPublisher that logs events at debug level.
func NewLogEventPublisher(logger *zap.Logger) EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logEventPublisher{logger: logger}
}

func (p *logEventPublisher) PublishReviewEvent(_ context.Context, event models.ReviewEvent) error {
	p.logger.Debug("Review event",
		zap.String("type", event.Type),
		zap.String("poemId", event.PoemID),
		zap.String("reviewId", event.ReviewID),
		zap.Int("rating", event.Rating))
	return nil
}
