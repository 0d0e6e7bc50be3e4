package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	messagingMocks "github.com/team-popo-world/back-repo/internal/messaging/mocks"
	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/search"
	searchMocks "github.com/team-popo-world/back-repo/internal/search/mocks"
	"github.com/team-popo-world/back-repo/internal/service"
)

func TestEmotionLogService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("Relays with a fresh id", func(t *testing.T) {
		publisher := new(messagingMocks.EmotionLogPublisher)
		publisher.On("PublishEmotionLog", ctx, mock.MatchedBy(func(l *models.EmotionLog) bool {
			return l.ID != uuid.Nil && l.UserID == "child-1" && l.Type == "ANXIOUS" && l.Message == "price dropped"
		})).Return(nil).Once()

		svc := service.NewEmotionLogService(publisher, new(searchMocks.EmotionLogIndex), zap.NewNop())
		entry, err := svc.Publish(ctx, " child-1 ", "ANXIOUS", "price dropped")
		require.NoError(t, err)
		assert.Equal(t, "child-1", entry.UserID)
		publisher.AssertExpectations(t)
	})

	t.Run("Requires user and type", func(t *testing.T) {
		publisher := new(messagingMocks.EmotionLogPublisher)
		svc := service.NewEmotionLogService(publisher, new(searchMocks.EmotionLogIndex), zap.NewNop())

		_, err := svc.Publish(ctx, "", "HAPPY", "m")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		_, err = svc.Publish(ctx, "u", "", "m")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		publisher.AssertNotCalled(t, "PublishEmotionLog", mock.Anything, mock.Anything)
	})

	t.Run("Publish failure", func(t *testing.T) {
		publisher := new(messagingMocks.EmotionLogPublisher)
		brokerErr := errors.New("closed")
		publisher.On("PublishEmotionLog", ctx, mock.Anything).Return(brokerErr).Once()

		svc := service.NewEmotionLogService(publisher, new(searchMocks.EmotionLogIndex), zap.NewNop())
		_, err := svc.Publish(ctx, "u", "HAPPY", "")
		assert.ErrorIs(t, err, brokerErr)
	})
}

func TestEmotionLogService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("Delegates to the index", func(t *testing.T) {
		index := new(searchMocks.EmotionLogIndex)
		query := search.EmotionLogQuery{UserID: "u", Size: 5}
		logs := []models.EmotionLog{{ID: uuid.New(), UserID: "u", Type: "HAPPY"}}
		index.On("Search", ctx, query).Return(logs, nil).Once()

		svc := service.NewEmotionLogService(new(messagingMocks.EmotionLogPublisher), index, zap.NewNop())
		got, err := svc.Search(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, logs, got)
	})

	t.Run("Rejects oversized pages", func(t *testing.T) {
		svc := service.NewEmotionLogService(new(messagingMocks.EmotionLogPublisher), new(searchMocks.EmotionLogIndex), zap.NewNop())
		_, err := svc.Search(ctx, search.EmotionLogQuery{Size: search.MaxSearchSize + 1})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}
