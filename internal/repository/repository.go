package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/team-popo-world/back-repo/internal/models"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ScenarioRepository stores invest scenarios.
type ScenarioRepository interface {
	// Create inserts a new scenario.
	Create(ctx context.Context, scenario *models.InvestScenario) error
	// GetByID returns models.ErrScenarioNotFound when the scenario does not exist.
	GetByID(ctx context.Context, scenarioID uuid.UUID) (*models.InvestScenario, error)
	// FindByChapterID returns the most recently revised or created scenario of the chapter,
	// or models.ErrScenarioNotFound.
	FindByChapterID(ctx context.Context, chapterID uuid.UUID) (*models.InvestScenario, error)
	// UpdateOldestUnupdated rewrites story and authorship of the oldest scenario that was never
	// updated and stamps updatedAt. Returns models.ErrNoScenarioToUpdate when none is eligible.
	UpdateOldestUnupdated(ctx context.Context, story string, isCustom bool, updatedAt time.Time) (*models.InvestScenario, error)
}

// SessionRepository stores invest sessions.
type SessionRepository interface {
	// Create inserts a new open session.
	Create(ctx context.Context, session *models.InvestSession) error
	// GetByID returns models.ErrSessionNotFound when the session does not exist.
	GetByID(ctx context.Context, sessionID uuid.UUID) (*models.InvestSession, error)
	// Close stamps the end time and outcome of an open session and returns the closed record.
	// Returns models.ErrSessionNotFound or models.ErrSessionAlreadyClosed.
	Close(ctx context.Context, sessionID uuid.UUID, endedAt time.Time, outcome models.SessionOutcome) (*models.InvestSession, error)
}

// InvestHistoryRepository is the append-only document store of turn history.
type InvestHistoryRepository interface {
	// Save appends a history record.
	Save(ctx context.Context, history *models.InvestHistory) error
	// GetByID returns models.ErrNotFound when the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.InvestHistory, error)
	// ListBySession returns the records of a session ordered by turn.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.InvestHistory, error)
}
