package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
)

// PublishTimeout bounds one broker publish.
const PublishTimeout = 10 * time.Second

// InvestHistoryPublisher relays turn history to the history store consumer.
type InvestHistoryPublisher interface {
	PublishInvestHistory(ctx context.Context, history *models.InvestHistory) error
}

// EmotionLogPublisher relays emotion logs to the search index consumer.
type EmotionLogPublisher interface {
	PublishEmotionLog(ctx context.Context, log *models.EmotionLog) error
}

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// channelOpener opens a fresh channel with the queue declared, returning the channel and its closer.
type channelOpener func() (amqpChannel, func() error, error)

// RabbitMQPublisher implements InvestHistoryPublisher and EmotionLogPublisher for one queue.
// A channel closed by the broker is reopened on the next publish.
type RabbitMQPublisher struct {
	channel   amqpChannel
	closer    func() error
	open      channelOpener
	queueName string
	logger    *zap.Logger
	mu        sync.Mutex
}

var (
	_ InvestHistoryPublisher = (*RabbitMQPublisher)(nil)
	_ EmotionLogPublisher    = (*RabbitMQPublisher)(nil)
)

// NewRabbitMQPublisher opens a channel on conn and declares the queue.
func NewRabbitMQPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{
		queueName: queueName,
		logger:    logger.Named("Publisher").With(zap.String("queue", queueName)),
		open: func() (amqpChannel, func() error, error) {
			ch, err := conn.Channel()
			if err != nil {
				return nil, nil, fmt.Errorf("open channel: %w", err)
			}
			if err := DeclareQueue(ch, queueName); err != nil {
				ch.Close()
				return nil, nil, err
			}
			return ch, ch.Close, nil
		},
	}
	if err := p.reopen(); err != nil {
		return nil, fmt.Errorf("publisher '%s': %w", queueName, err)
	}
	p.logger.Info("Publisher ready")
	return p, nil
}

// NewRabbitMQInvestHistoryPublisher creates the publisher of the history queue.
func NewRabbitMQInvestHistoryPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	return NewRabbitMQPublisher(conn, queueName, logger)
}

// NewRabbitMQEmotionLogPublisher creates the publisher of the emotion log queue.
func NewRabbitMQEmotionLogPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	return NewRabbitMQPublisher(conn, queueName, logger)
}

// reopen replaces the current channel. Callers other than the constructor hold mu.
func (p *RabbitMQPublisher) reopen() error {
	ch, closer, err := p.open()
	if err != nil {
		return err
	}
	if p.closer != nil {
		_ = p.closer()
	}
	p.channel = ch
	p.closer = closer
	return nil
}

// PublishInvestHistory publishes one turn history record.
func (p *RabbitMQPublisher) PublishInvestHistory(ctx context.Context, history *models.InvestHistory) error {
	body, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal invest history %s: %w", history.ID, err)
	}
	if err := p.publishMessage(ctx, body); err != nil {
		p.logger.Error("Failed to publish invest history",
			zap.Stringer("historyID", history.ID),
			zap.Stringer("sessionID", history.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("publish invest history %s: %w", history.ID, err)
	}
	p.logger.Debug("Invest history published", zap.Stringer("historyID", history.ID), zap.Int("turn", history.Turn))
	return nil
}

// PublishEmotionLog publishes one emotion log.
func (p *RabbitMQPublisher) PublishEmotionLog(ctx context.Context, log *models.EmotionLog) error {
	body, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal emotion log %s: %w", log.ID, err)
	}
	if err := p.publishMessage(ctx, body); err != nil {
		p.logger.Error("Failed to publish emotion log", zap.Stringer("logID", log.ID), zap.Error(err))
		return fmt.Errorf("publish emotion log %s: %w", log.ID, err)
	}
	p.logger.Debug("Emotion log published", zap.Stringer("logID", log.ID))
	return nil
}

// publishMessage sends the body once. A channel closed by the broker is reopened and the send
// repeated on the new channel, since nothing reached the broker. Any other failure is reported.
func (p *RabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	publishCtx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	err := p.send(publishCtx, msg)
	if errors.Is(err, amqp.ErrClosed) && p.open != nil {
		p.logger.Warn("Publisher channel closed, reopening")
		if reopenErr := p.reopen(); reopenErr != nil {
			err = fmt.Errorf("%w (reopen failed: %v)", err, reopenErr)
		} else {
			err = p.send(publishCtx, msg)
		}
	}
	p.mu.Unlock()

	if err != nil {
		messagesPublished.WithLabelValues(p.queueName, resultError).Inc()
		return err
	}
	messagesPublished.WithLabelValues(p.queueName, resultOK).Inc()
	return nil
}

func (p *RabbitMQPublisher) send(ctx context.Context, msg amqp.Publishing) error {
	if p.channel == nil {
		return amqp.ErrClosed
	}
	return p.channel.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		msg,
	)
}

// Close closes the underlying channel.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closer == nil {
		return nil
	}
	err := p.closer()
	p.channel, p.closer, p.open = nil, nil, nil
	return err
}
