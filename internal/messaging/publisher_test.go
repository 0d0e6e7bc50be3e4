package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
)

type fakeChannel struct {
	key         string
	msg         amqp.Publishing
	hadDeadline bool
	err         error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.key = key
	f.msg = msg
	_, f.hadDeadline = ctx.Deadline()
	return f.err
}

func newTestPublisher(ch amqpChannel, queue string) *RabbitMQPublisher {
	return &RabbitMQPublisher{channel: ch, queueName: queue, logger: zap.NewNop()}
}

func TestPublishInvestHistory(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch, "invest-history")

	history := &models.InvestHistory{
		ID:              uuid.New(),
		SessionID:       uuid.New(),
		Turn:            3,
		TransactionType: "BUY",
		StartedAt:       time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
	}
	require.NoError(t, publisher.PublishInvestHistory(context.Background(), history))

	assert.Equal(t, "invest-history", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.True(t, ch.hadDeadline)

	var decoded models.InvestHistory
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, history.ID, decoded.ID)
	assert.Equal(t, 3, decoded.Turn)
	assert.True(t, history.StartedAt.Equal(decoded.StartedAt))
}

func TestPublishEmotionLogFailure(t *testing.T) {
	brokerErr := errors.New("channel/connection is not open")
	publisher := newTestPublisher(&fakeChannel{err: brokerErr}, "log-emotion")

	err := publisher.PublishEmotionLog(context.Background(), &models.EmotionLog{ID: uuid.New(), UserID: "u", Type: "t"})
	assert.ErrorIs(t, err, brokerErr)
}

func TestCloseWithoutChannel(t *testing.T) {
	assert.NoError(t, newTestPublisher(&fakeChannel{}, "q").Close())
}

func TestPublishReopensClosedChannel(t *testing.T) {
	closed := &fakeChannel{err: amqp.ErrClosed}
	fresh := &fakeChannel{}
	closedChannelClosed := false

	publisher := newTestPublisher(closed, "invest-history")
	publisher.closer = func() error {
		closedChannelClosed = true
		return nil
	}
	opens := 0
	publisher.open = func() (amqpChannel, func() error, error) {
		opens++
		return fresh, func() error { return nil }, nil
	}

	history := &models.InvestHistory{ID: uuid.New(), SessionID: uuid.New(), Turn: 1}
	require.NoError(t, publisher.PublishInvestHistory(context.Background(), history))

	assert.Equal(t, 1, opens)
	assert.True(t, closedChannelClosed)
	assert.Equal(t, "invest-history", fresh.key)

	// Later publishes keep using the reopened channel.
	closed.key = ""
	require.NoError(t, publisher.PublishInvestHistory(context.Background(), history))
	assert.Equal(t, 1, opens)
	assert.Empty(t, closed.key)
}

func TestPublishReportsFailedReopen(t *testing.T) {
	publisher := newTestPublisher(&fakeChannel{err: amqp.ErrClosed}, "log-emotion")
	publisher.open = func() (amqpChannel, func() error, error) {
		return nil, nil, errors.New("connection is closed")
	}

	err := publisher.PublishEmotionLog(context.Background(), &models.EmotionLog{ID: uuid.New(), UserID: "u", Type: "t"})
	require.Error(t, err)
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.Contains(t, err.Error(), "connection is closed")
}

func TestPublishAfterClose(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch, "q")
	publisher.closer = func() error { return nil }
	require.NoError(t, publisher.Close())

	err := publisher.PublishEmotionLog(context.Background(), &models.EmotionLog{ID: uuid.New(), UserID: "u", Type: "t"})
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.Empty(t, ch.key)
}
