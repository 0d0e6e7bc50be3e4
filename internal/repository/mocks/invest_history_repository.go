package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Mock InvestHistoryRepository
type InvestHistoryRepository struct {
	mock.Mock
}

func (m *InvestHistoryRepository) Save(ctx context.Context, history *models.InvestHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *InvestHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InvestHistory, error) {
	args := m.Called(ctx, id)
	history, _ := args.Get(0).(*models.InvestHistory)
	return history, args.Error(1)
}

func (m *InvestHistoryRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.InvestHistory, error) {
	args := m.Called(ctx, sessionID)
	histories, _ := args.Get(0).([]models.InvestHistory)
	return histories, args.Error(1)
}
