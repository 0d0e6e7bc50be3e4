package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Mock SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, session *models.InvestSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*models.InvestSession, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*models.InvestSession)
	return session, args.Error(1)
}

func (m *SessionRepository) Close(ctx context.Context, sessionID uuid.UUID, endedAt time.Time, outcome models.SessionOutcome) (*models.InvestSession, error) {
	args := m.Called(ctx, sessionID, endedAt, outcome)
	session, _ := args.Get(0).(*models.InvestSession)
	return session, args.Error(1)
}
