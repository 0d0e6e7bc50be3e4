package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Mock ScenarioRepository
type ScenarioRepository struct {
	mock.Mock
}

func (m *ScenarioRepository) Create(ctx context.Context, scenario *models.InvestScenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *ScenarioRepository) GetByID(ctx context.Context, scenarioID uuid.UUID) (*models.InvestScenario, error) {
	args := m.Called(ctx, scenarioID)
	scenario, _ := args.Get(0).(*models.InvestScenario)
	return scenario, args.Error(1)
}

func (m *ScenarioRepository) FindByChapterID(ctx context.Context, chapterID uuid.UUID) (*models.InvestScenario, error) {
	args := m.Called(ctx, chapterID)
	scenario, _ := args.Get(0).(*models.InvestScenario)
	return scenario, args.Error(1)
}

func (m *ScenarioRepository) UpdateOldestUnupdated(ctx context.Context, story string, isCustom bool, updatedAt time.Time) (*models.InvestScenario, error) {
	args := m.Called(ctx, story, isCustom, updatedAt)
	scenario, _ := args.Get(0).(*models.InvestScenario)
	return scenario, args.Error(1)
}
