package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ SessionRepository = (*pgSessionRepository)(nil)

const sessionColumns = `session_id, child_id, chapter_id, scenario_id, started_at, ended_at, success, profit`

const (
	createSessionQuery = `
INSERT INTO invest_session (session_id, child_id, chapter_id, scenario_id, started_at)
VALUES ($1, $2, $3, $4, $5)`

	getSessionByIDQuery = `
SELECT ` + sessionColumns + `
FROM invest_session
WHERE session_id = $1`

	// ended_at IS NULL keeps a closed session immutable.
	closeSessionQuery = `
UPDATE invest_session
SET ended_at = $2, success = $3, profit = $4
WHERE session_id = $1 AND ended_at IS NULL
RETURNING ` + sessionColumns
)

type pgSessionRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgSessionRepository creates a PostgreSQL backed SessionRepository.
func NewPgSessionRepository(db DBTX, logger *zap.Logger) SessionRepository {
	return &pgSessionRepository{
		db:     db,
		logger: logger.Named("PgSessionRepo"),
	}
}

func (r *pgSessionRepository) Create(ctx context.Context, session *models.InvestSession) error {
	logFields := []zap.Field{
		zap.Stringer("sessionID", session.SessionID),
		zap.Stringer("chapterID", session.ChapterID),
		zap.Stringer("scenarioID", session.ScenarioID),
	}

	_, err := r.db.Exec(ctx, createSessionQuery,
		session.SessionID,
		session.ChildID,
		session.ChapterID,
		session.ScenarioID,
		session.StartedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert session", append(logFields, zap.Error(err))...)
		return fmt.Errorf("insert session %s: %w", session.SessionID, err)
	}

	r.logger.Debug("Session opened", logFields...)
	return nil
}

func (r *pgSessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*models.InvestSession, error) {
	var session models.InvestSession
	if err := pgxscan.Get(ctx, r.db, &session, getSessionByIDQuery, sessionID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get session", zap.Stringer("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (r *pgSessionRepository) Close(ctx context.Context, sessionID uuid.UUID, endedAt time.Time, outcome models.SessionOutcome) (*models.InvestSession, error) {
	log := r.logger.With(zap.Stringer("sessionID", sessionID))

	var session models.InvestSession
	err := pgxscan.Get(ctx, r.db, &session, closeSessionQuery, sessionID, endedAt, outcome.Success, outcome.Profit)
	if err == nil {
		log.Info("Session closed", zap.Bool("success", outcome.Success), zap.Int("profit", outcome.Profit))
		return &session, nil
	}
	if !pgxscan.NotFound(err) {
		log.Error("Failed to close session", zap.Error(err))
		return nil, fmt.Errorf("close session %s: %w", sessionID, err)
	}

	// Nothing updated: either the session does not exist or it is already closed.
	if _, getErr := r.GetByID(ctx, sessionID); getErr != nil {
		if errors.Is(getErr, models.ErrSessionNotFound) {
			return nil, models.ErrSessionNotFound
		}
		return nil, getErr
	}
	log.Warn("Attempted to close an already closed session")
	return nil, models.ErrSessionAlreadyClosed
}
