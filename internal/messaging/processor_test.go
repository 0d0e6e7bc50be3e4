package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/messaging"
	"github.com/team-popo-world/back-repo/internal/models"
	repoMocks "github.com/team-popo-world/back-repo/internal/repository/mocks"
	searchMocks "github.com/team-popo-world/back-repo/internal/search/mocks"
)

func validHistory() models.InvestHistory {
	start := time.Date(2025, 6, 1, 10, 0, 0, 123_000_000, time.UTC)
	return models.InvestHistory{
		ID:              uuid.New(),
		SessionID:       uuid.New(),
		ChapterID:       uuid.New(),
		ChildID:         uuid.New(),
		Turn:            2,
		RiskLevel:       1,
		CurrentPoint:    900,
		BeforeValue:     100,
		CurrentValue:    110,
		InitialValue:    100,
		NumberOfShares:  2,
		Income:          20,
		TransactionType: "SELL",
		PlusClick:       1,
		MinusClick:      0,
		StartedAt:       start,
		EndedAt:         start.Add(time.Minute),
	}
}

func TestInvestHistoryProcessor_Process(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()

	t.Run("Stores a valid record", func(t *testing.T) {
		history := validHistory()
		body, err := json.Marshal(history)
		require.NoError(t, err)

		repo := new(repoMocks.InvestHistoryRepository)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(h *models.InvestHistory) bool {
			return h.ID == history.ID && h.StartedAt.Equal(history.StartedAt) && h.EndedAt.Equal(history.EndedAt) &&
				h.Turn == history.Turn && h.TransactionType == history.TransactionType
		})).Return(nil).Once()

		processor := messaging.NewInvestHistoryProcessor(repo, validate, zap.NewNop())
		require.NoError(t, processor.Process(ctx, body))
		repo.AssertExpectations(t)
	})

	t.Run("Malformed JSON is not stored", func(t *testing.T) {
		repo := new(repoMocks.InvestHistoryRepository)
		processor := messaging.NewInvestHistoryProcessor(repo, validate, zap.NewNop())

		err := processor.Process(ctx, []byte(`{"turn": "three"`))
		assert.ErrorIs(t, err, messaging.ErrMalformedMessage)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Record failing validation is not stored", func(t *testing.T) {
		history := validHistory()
		history.SessionID = uuid.Nil
		history.TransactionType = ""
		body, err := json.Marshal(history)
		require.NoError(t, err)

		repo := new(repoMocks.InvestHistoryRepository)
		processor := messaging.NewInvestHistoryProcessor(repo, validate, zap.NewNop())

		err = processor.Process(ctx, body)
		assert.ErrorIs(t, err, messaging.ErrMalformedMessage)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Store failure is reported", func(t *testing.T) {
		body, err := json.Marshal(validHistory())
		require.NoError(t, err)

		storeErr := errors.New("connection refused")
		repo := new(repoMocks.InvestHistoryRepository)
		repo.On("Save", mock.Anything, mock.Anything).Return(storeErr).Once()

		processor := messaging.NewInvestHistoryProcessor(repo, validate, zap.NewNop())
		err = processor.Process(ctx, body)
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, messaging.ErrMalformedMessage)
	})
}

func TestEmotionLogProcessor_Process(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()

	t.Run("Assigns an id when missing", func(t *testing.T) {
		index := new(searchMocks.EmotionLogIndex)
		index.On("Index", mock.Anything, mock.MatchedBy(func(l *models.EmotionLog) bool {
			return l.ID != uuid.Nil && l.UserID == "child-7" && l.Type == "HAPPY" && l.Message == "profit!"
		})).Return(nil).Once()

		processor := messaging.NewEmotionLogProcessor(index, validate, zap.NewNop())
		err := processor.Process(ctx, []byte(`{"userId":"child-7","type":"HAPPY","message":"profit!"}`))
		require.NoError(t, err)
		index.AssertExpectations(t)
	})

	t.Run("Keeps the producer id", func(t *testing.T) {
		id := uuid.New()
		index := new(searchMocks.EmotionLogIndex)
		index.On("Index", mock.Anything, mock.MatchedBy(func(l *models.EmotionLog) bool { return l.ID == id })).Return(nil).Once()

		processor := messaging.NewEmotionLogProcessor(index, validate, zap.NewNop())
		body, err := json.Marshal(models.EmotionLog{ID: id, UserID: "u", Type: "SAD"})
		require.NoError(t, err)
		require.NoError(t, processor.Process(ctx, body))
		index.AssertExpectations(t)
	})

	t.Run("Missing type is malformed", func(t *testing.T) {
		index := new(searchMocks.EmotionLogIndex)
		processor := messaging.NewEmotionLogProcessor(index, validate, zap.NewNop())

		err := processor.Process(ctx, []byte(`{"userId":"child-7"}`))
		assert.ErrorIs(t, err, messaging.ErrMalformedMessage)
		index.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
	})

	t.Run("Garbage is malformed", func(t *testing.T) {
		index := new(searchMocks.EmotionLogIndex)
		processor := messaging.NewEmotionLogProcessor(index, validate, zap.NewNop())

		assert.ErrorIs(t, processor.Process(ctx, []byte("not json")), messaging.ErrMalformedMessage)
	})
}
