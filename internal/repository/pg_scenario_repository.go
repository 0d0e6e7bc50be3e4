package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ ScenarioRepository = (*pgScenarioRepository)(nil)

const scenarioColumns = `scenario_id, child_id, chapter_id, story, is_custom, created_at, updated_at`

const (
	createScenarioQuery = `
INSERT INTO invest_scenario (` + scenarioColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getScenarioByIDQuery = `
SELECT ` + scenarioColumns + `
FROM invest_scenario
WHERE scenario_id = $1`

	findScenarioByChapterQuery = `
SELECT ` + scenarioColumns + `
FROM invest_scenario
WHERE chapter_id = $1
ORDER BY COALESCE(updated_at, created_at) DESC, created_at DESC
LIMIT 1`

	// The sub-select locks the candidate row so two concurrent rotations never pick the same draft.
	updateOldestUnupdatedScenarioQuery = `
UPDATE invest_scenario
SET story = $1, is_custom = $2, updated_at = $3
WHERE scenario_id = (
    SELECT scenario_id
    FROM invest_scenario
    WHERE updated_at IS NULL
    ORDER BY created_at ASC, scenario_id ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING ` + scenarioColumns
)

type pgScenarioRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgScenarioRepository creates a PostgreSQL backed ScenarioRepository.
func NewPgScenarioRepository(db DBTX, logger *zap.Logger) ScenarioRepository {
	return &pgScenarioRepository{
		db:     db,
		logger: logger.Named("PgScenarioRepo"),
	}
}

func (r *pgScenarioRepository) Create(ctx context.Context, scenario *models.InvestScenario) error {
	logFields := []zap.Field{zap.Stringer("scenarioID", scenario.ScenarioID), zap.Stringer("childID", scenario.ChildID)}

	_, err := r.db.Exec(ctx, createScenarioQuery,
		scenario.ScenarioID,
		scenario.ChildID,
		scenario.ChapterID,
		scenario.Story,
		scenario.IsCustom,
		scenario.CreatedAt,
		scenario.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert scenario", append(logFields, zap.Error(err))...)
		return fmt.Errorf("insert scenario %s: %w", scenario.ScenarioID, err)
	}

	r.logger.Debug("Scenario inserted", logFields...)
	return nil
}

func (r *pgScenarioRepository) GetByID(ctx context.Context, scenarioID uuid.UUID) (*models.InvestScenario, error) {
	var scenario models.InvestScenario
	if err := pgxscan.Get(ctx, r.db, &scenario, getScenarioByIDQuery, scenarioID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrScenarioNotFound
		}
		r.logger.Error("Failed to get scenario", zap.Stringer("scenarioID", scenarioID), zap.Error(err))
		return nil, fmt.Errorf("get scenario %s: %w", scenarioID, err)
	}
	return &scenario, nil
}

func (r *pgScenarioRepository) FindByChapterID(ctx context.Context, chapterID uuid.UUID) (*models.InvestScenario, error) {
	var scenario models.InvestScenario
	if err := pgxscan.Get(ctx, r.db, &scenario, findScenarioByChapterQuery, chapterID); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("No scenario for chapter", zap.Stringer("chapterID", chapterID))
			return nil, models.ErrScenarioNotFound
		}
		r.logger.Error("Failed to find scenario by chapter", zap.Stringer("chapterID", chapterID), zap.Error(err))
		return nil, fmt.Errorf("find scenario by chapter %s: %w", chapterID, err)
	}
	return &scenario, nil
}

func (r *pgScenarioRepository) UpdateOldestUnupdated(ctx context.Context, story string, isCustom bool, updatedAt time.Time) (*models.InvestScenario, error) {
	var scenario models.InvestScenario
	if err := pgxscan.Get(ctx, r.db, &scenario, updateOldestUnupdatedScenarioQuery, story, isCustom, updatedAt); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Info("No un-updated scenario left to rotate")
			return nil, models.ErrNoScenarioToUpdate
		}
		r.logger.Error("Failed to update oldest scenario", zap.Error(err))
		return nil, fmt.Errorf("update oldest scenario: %w", err)
	}

	r.logger.Info("Rotated scenario", zap.Stringer("scenarioID", scenario.ScenarioID), zap.Bool("isCustom", scenario.IsCustom))
	return &scenario, nil
}
