package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Mock InvestHistoryPublisher
type InvestHistoryPublisher struct {
	mock.Mock
}

func (m *InvestHistoryPublisher) PublishInvestHistory(ctx context.Context, history *models.InvestHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

// Mock EmotionLogPublisher
type EmotionLogPublisher struct {
	mock.Mock
}

func (m *EmotionLogPublisher) PublishEmotionLog(ctx context.Context, log *models.EmotionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
