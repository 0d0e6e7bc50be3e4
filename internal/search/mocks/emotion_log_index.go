package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/search"
)

// Mock EmotionLogIndex
type EmotionLogIndex struct {
	mock.Mock
}

func (m *EmotionLogIndex) Index(ctx context.Context, log *models.EmotionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *EmotionLogIndex) Search(ctx context.Context, query search.EmotionLogQuery) ([]models.EmotionLog, error) {
	args := m.Called(ctx, query)
	logs, _ := args.Get(0).([]models.EmotionLog)
	return logs, args.Error(1)
}
