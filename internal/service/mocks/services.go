package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/search"
	"github.com/team-popo-world/back-repo/internal/service"
)

// Mock InvestService
type InvestService struct {
	mock.Mock
}

func (m *InvestService) GetChapter(ctx context.Context, childID, chapterID uuid.UUID) (*service.ChapterStart, error) {
	args := m.Called(ctx, childID, chapterID)
	start, _ := args.Get(0).(*service.ChapterStart)
	return start, args.Error(1)
}

func (m *InvestService) RecordTurn(ctx context.Context, childID uuid.UUID, input service.TurnInput) (*models.InvestHistory, error) {
	args := m.Called(ctx, childID, input)
	history, _ := args.Get(0).(*models.InvestHistory)
	return history, args.Error(1)
}

func (m *InvestService) ClearChapter(ctx context.Context, chapterID, sessionID uuid.UUID, outcome models.SessionOutcome) (*models.InvestSession, error) {
	args := m.Called(ctx, chapterID, sessionID, outcome)
	session, _ := args.Get(0).(*models.InvestSession)
	return session, args.Error(1)
}

func (m *InvestService) CreateScenario(ctx context.Context, childID, chapterID uuid.UUID, story string, isCustom bool) (*models.InvestScenario, error) {
	args := m.Called(ctx, childID, chapterID, story, isCustom)
	scenario, _ := args.Get(0).(*models.InvestScenario)
	return scenario, args.Error(1)
}

func (m *InvestService) UpdateOldestScenario(ctx context.Context, story string, isCustom bool) (*models.InvestScenario, error) {
	args := m.Called(ctx, story, isCustom)
	scenario, _ := args.Get(0).(*models.InvestScenario)
	return scenario, args.Error(1)
}

func (m *InvestService) ListHistory(ctx context.Context, sessionID uuid.UUID) ([]models.InvestHistory, error) {
	args := m.Called(ctx, sessionID)
	histories, _ := args.Get(0).([]models.InvestHistory)
	return histories, args.Error(1)
}

// Mock EmotionLogService
type EmotionLogService struct {
	mock.Mock
}

func (m *EmotionLogService) Publish(ctx context.Context, userID, logType, message string) (*models.EmotionLog, error) {
	args := m.Called(ctx, userID, logType, message)
	entry, _ := args.Get(0).(*models.EmotionLog)
	return entry, args.Error(1)
}

func (m *EmotionLogService) Search(ctx context.Context, query search.EmotionLogQuery) ([]models.EmotionLog, error) {
	args := m.Called(ctx, query)
	logs, _ := args.Get(0).([]models.EmotionLog)
	return logs, args.Error(1)
}
