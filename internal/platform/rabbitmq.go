package platform

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	rabbitMaxAttempts = 5
	rabbitRetryDelay  = 5 * time.Second
)

// ConnectRabbitMQ dials the broker, retrying while it is still starting up.
func ConnectRabbitMQ(ctx context.Context, url string, logger *zap.Logger) (*amqp.Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= rabbitMaxAttempts; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			logger.Info("Connected to RabbitMQ")
			return conn, nil
		}
		lastErr = err
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", rabbitMaxAttempts),
			zap.Duration("retry_delay", rabbitRetryDelay),
			zap.Error(err),
		)
		select {
		case <-time.After(rabbitRetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("connect to RabbitMQ after %d attempts: %w", rabbitMaxAttempts, lastErr)
}
