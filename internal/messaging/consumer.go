package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// MessageTimeout bounds the store write for one delivery.
	MessageTimeout = 15 * time.Second
	reconnectDelay = 5 * time.Second
)

// ErrMalformedMessage marks a delivery that can never be stored.
var ErrMalformedMessage = errors.New("malformed message")

// Processor stores the payload of one delivery. It is independent of amqp so it can be tested alone.
type Processor interface {
	Process(ctx context.Context, body []byte) error
}

// Consumer reads one queue, one delivery at a time, and hands every body to a Processor.
// Every delivery is acknowledged whether or not it was stored.
type Consumer struct {
	conn         *amqp.Connection
	queueName    string
	consumerTag  string
	processor    Processor
	logger       *zap.Logger
	shutdownChan chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewConsumer creates a Consumer for the queue.
func NewConsumer(conn *amqp.Connection, queueName, consumerTag string, processor Processor, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:         conn,
		queueName:    queueName,
		consumerTag:  consumerTag,
		processor:    processor,
		logger:       logger.Named("Consumer").With(zap.String("queue", queueName)),
		shutdownChan: make(chan struct{}),
	}
}

// Start runs the consume loop in the background, re-opening the channel after failures.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.shutdownChan:
				c.logger.Info("Consumer stopped")
				return
			case <-ctx.Done():
				c.logger.Info("Consumer context done")
				return
			default:
			}

			if err := c.consumeMessages(ctx); err != nil {
				c.logger.Error("Consume loop failed, retrying", zap.Duration("delay", reconnectDelay), zap.Error(err))
				select {
				case <-time.After(reconnectDelay):
				case <-c.shutdownChan:
				case <-ctx.Done():
				}
			}
		}
	}()
	c.logger.Info("Consumer started")
}

// Stop signals the loop to exit and waits for the in-flight delivery to finish.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() { close(c.shutdownChan) })
	c.wg.Wait()
}

func (c *Consumer) consumeMessages(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, c.queueName); err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.logger.Info("Waiting for messages")
	for {
		select {
		case <-c.shutdownChan:
			return nil
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery processes one delivery and always acknowledges it.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	log := c.logger.With(zap.Uint64("deliveryTag", d.DeliveryTag))

	start := time.Now()
	processCtx, cancel := context.WithTimeout(ctx, MessageTimeout)
	err := c.processor.Process(processCtx, d.Body)
	cancel()
	processingDuration.WithLabelValues(c.queueName).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		messagesConsumed.WithLabelValues(c.queueName).Inc()
	case errors.Is(err, ErrMalformedMessage):
		messagesDropped.WithLabelValues(c.queueName, reasonMalformed).Inc()
		log.Warn("Dropping malformed message", zap.Error(err), zap.Int("bodySize", len(d.Body)))
	default:
		messagesDropped.WithLabelValues(c.queueName, reasonStore).Inc()
		log.Error("Dropping message after store failure", zap.Error(err))
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Failed to ack message", zap.Error(ackErr))
	}
}
