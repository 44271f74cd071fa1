package messagequeue

import (
	"context"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQService implements the MessageQueue interface using RabbitMQ.
type RabbitMQService struct {
	mu       sync.Mutex // amqp.Channel is not safe for concurrent publishes
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]bool
	logger   *zap.Logger
}

// NewRabbitMQServiceConfig contains options for creating a new RabbitMQService.
type NewRabbitMQServiceConfig struct {
	URL string
}

// NewRabbitMQService dials the broker and opens a channel.
func NewRabbitMQService(cfg NewRabbitMQServiceConfig, logger *zap.Logger) (*RabbitMQService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", zap.Error(err))
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a RabbitMQ channel", zap.Error(err))
		conn.Close()
		return nil, err
	}

	logger.Info("Successfully connected to RabbitMQ and opened a channel")
	return &RabbitMQService{
		conn:     conn,
		channel:  ch,
		declared: make(map[string]bool),
		logger:   logger,
	}, nil
}

// Publish sends a persistent message to a durable queue, declaring it on first use.
// The amqp client has no context support; ctx is only checked before publishing.
func (s *RabbitMQService) Publish(ctx context.Context, queueName string, contentType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.declared[queueName] {
		_, err := s.channel.QueueDeclare(
			queueName, // name
			true,      // durable
			false,     // delete when unused
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		)
		if err != nil {
			s.logger.Error("Failed to declare a queue", zap.String("queue", queueName), zap.Error(err))
			return err
		}
		s.declared[queueName] = true
	}

	err := s.channel.Publish(
		"",        // exchange
		queueName, // routing key (queue name)
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  contentType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		s.logger.Error("Failed to publish a message", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	s.logger.Debug("Published message", zap.String("queue", queueName), zap.Int("bytes", len(body)))
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ channel", zap.Error(err))
			lastErr = err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing RabbitMQ connection", zap.Error(err))
			lastErr = err
		}
	}
	if lastErr == nil {
		s.logger.Info("RabbitMQ channel and connection closed successfully")
	}
	return lastErr
}
