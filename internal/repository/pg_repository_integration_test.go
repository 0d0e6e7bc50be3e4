package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/database"
	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/repository"
)

type PgRepositorySuite struct {
	suite.Suite
	ctx          context.Context
	pgContainer  *postgres.PostgresContainer
	pool         *pgxpool.Pool
	scenarioRepo repository.ScenarioRepository
	sessionRepo  repository.SessionRepository
}

func TestPgRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration tests in short mode")
	}
	suite.Run(t, new(PgRepositorySuite))
}

func (s *PgRepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("invest-test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = database.Connect(s.ctx, database.PoolConfig{DSN: connStr, MaxConns: 5}, zap.NewNop())
	require.NoError(s.T(), err)

	require.NoError(s.T(), database.NewMigrator(s.pool, zap.NewNop()).Up(s.ctx))

	s.scenarioRepo = repository.NewPgScenarioRepository(s.pool, zap.NewNop())
	s.sessionRepo = repository.NewPgSessionRepository(s.pool, zap.NewNop())
}

func (s *PgRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		require.NoError(s.T(), s.pgContainer.Terminate(context.Background()))
	}
}

func (s *PgRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE invest_session, invest_scenario`)
	require.NoError(s.T(), err)
}

// Postgres keeps microseconds.
func dbNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PgRepositorySuite) newScenario(chapterID uuid.UUID, createdAt time.Time) *models.InvestScenario {
	scenario := &models.InvestScenario{
		ScenarioID: uuid.New(),
		ChildID:    uuid.New(),
		ChapterID:  &chapterID,
		Story:      `{"title":"market day"}`,
		IsCustom:   false,
		CreatedAt:  createdAt,
	}
	require.NoError(s.T(), s.scenarioRepo.Create(s.ctx, scenario))
	return scenario
}

func (s *PgRepositorySuite) TestScenarioCreateAndGet() {
	chapterID := uuid.New()
	created := s.newScenario(chapterID, dbNow())

	got, err := s.scenarioRepo.GetByID(s.ctx, created.ScenarioID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ScenarioID, got.ScenarioID)
	assert.Equal(s.T(), created.ChildID, got.ChildID)
	require.NotNil(s.T(), got.ChapterID)
	assert.Equal(s.T(), chapterID, *got.ChapterID)
	assert.Equal(s.T(), created.Story, got.Story)
	assert.True(s.T(), created.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(s.T(), got.UpdatedAt)
	assert.False(s.T(), got.IsUpdated())
}

func (s *PgRepositorySuite) TestScenarioGetByIDNotFound() {
	_, err := s.scenarioRepo.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(s.T(), err, models.ErrScenarioNotFound)
}

func (s *PgRepositorySuite) TestFindByChapterIDReturnsMostRecent() {
	chapterID := uuid.New()
	base := dbNow().Add(-time.Hour)
	s.newScenario(chapterID, base)
	newest := s.newScenario(chapterID, base.Add(10*time.Minute))
	s.newScenario(uuid.New(), base.Add(20*time.Minute))

	got, err := s.scenarioRepo.FindByChapterID(s.ctx, chapterID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), newest.ScenarioID, got.ScenarioID)

	_, err = s.scenarioRepo.FindByChapterID(s.ctx, uuid.New())
	assert.ErrorIs(s.T(), err, models.ErrScenarioNotFound)
}

func (s *PgRepositorySuite) TestUpdateOldestUnupdated() {
	chapterID := uuid.New()
	base := dbNow().Add(-time.Hour)
	oldest := s.newScenario(chapterID, base)
	younger := s.newScenario(chapterID, base.Add(time.Minute))

	updatedAt := dbNow()
	got, err := s.scenarioRepo.UpdateOldestUnupdated(s.ctx, "rewritten", true, updatedAt)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), oldest.ScenarioID, got.ScenarioID)
	assert.Equal(s.T(), "rewritten", got.Story)
	assert.True(s.T(), got.IsCustom)
	require.NotNil(s.T(), got.UpdatedAt)
	assert.True(s.T(), updatedAt.Equal(*got.UpdatedAt))
	assert.Equal(s.T(), oldest.ChildID, got.ChildID)
	assert.True(s.T(), oldest.CreatedAt.Equal(got.CreatedAt))

	untouched, err := s.scenarioRepo.GetByID(s.ctx, younger.ScenarioID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), untouched.UpdatedAt)
	assert.Equal(s.T(), younger.Story, untouched.Story)
}

func (s *PgRepositorySuite) TestUpdateOldestUnupdatedNoneEligible() {
	s.newScenario(uuid.New(), dbNow())
	_, err := s.scenarioRepo.UpdateOldestUnupdated(s.ctx, "first", false, dbNow())
	require.NoError(s.T(), err)

	_, err = s.scenarioRepo.UpdateOldestUnupdated(s.ctx, "second", false, dbNow())
	assert.ErrorIs(s.T(), err, models.ErrNoScenarioToUpdate)

	var count int
	require.NoError(s.T(), s.pool.QueryRow(s.ctx, `SELECT count(*) FROM invest_scenario WHERE story = 'second'`).Scan(&count))
	assert.Zero(s.T(), count)
}

func (s *PgRepositorySuite) TestUpdateOldestUnupdatedConcurrent() {
	base := dbNow().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		s.newScenario(uuid.New(), base.Add(time.Duration(i)*time.Minute))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		updated = make(map[uuid.UUID]int)
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.scenarioRepo.UpdateOldestUnupdated(s.ctx, "parallel", false, dbNow())
			if err != nil {
				return
			}
			mu.Lock()
			updated[got.ScenarioID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(s.T(), updated, 4)
	for id, n := range updated {
		assert.Equal(s.T(), 1, n, "scenario %s rotated more than once", id)
	}
}

func (s *PgRepositorySuite) TestSessionLifecycle() {
	chapterID := uuid.New()
	scenario := s.newScenario(chapterID, dbNow())

	session := &models.InvestSession{
		SessionID:  uuid.New(),
		ChildID:    scenario.ChildID,
		ChapterID:  chapterID,
		ScenarioID: scenario.ScenarioID,
		StartedAt:  dbNow(),
	}
	require.NoError(s.T(), s.sessionRepo.Create(s.ctx, session))

	opened, err := s.sessionRepo.GetByID(s.ctx, session.SessionID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.SessionStateOpen, opened.State())
	assert.Nil(s.T(), opened.Success)
	assert.Nil(s.T(), opened.Profit)

	endedAt := dbNow().Add(time.Minute)
	closed, err := s.sessionRepo.Close(s.ctx, session.SessionID, endedAt, models.SessionOutcome{Success: true, Profit: 120})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.SessionStateClosed, closed.State())
	require.NotNil(s.T(), closed.EndedAt)
	assert.True(s.T(), endedAt.Equal(*closed.EndedAt))
	require.NotNil(s.T(), closed.Success)
	assert.True(s.T(), *closed.Success)
	require.NotNil(s.T(), closed.Profit)
	assert.Equal(s.T(), 120, *closed.Profit)
	assert.True(s.T(), session.StartedAt.Equal(closed.StartedAt))
	assert.Equal(s.T(), session.ChildID, closed.ChildID)
	assert.Equal(s.T(), session.ChapterID, closed.ChapterID)
	assert.Equal(s.T(), session.ScenarioID, closed.ScenarioID)

	_, err = s.sessionRepo.Close(s.ctx, session.SessionID, dbNow(), models.SessionOutcome{Success: false, Profit: -5})
	assert.ErrorIs(s.T(), err, models.ErrSessionAlreadyClosed)

	again, err := s.sessionRepo.GetByID(s.ctx, session.SessionID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 120, *again.Profit)
}

func (s *PgRepositorySuite) TestCloseUnknownSession() {
	_, err := s.sessionRepo.Close(s.ctx, uuid.New(), dbNow(), models.SessionOutcome{})
	assert.ErrorIs(s.T(), err, models.ErrSessionNotFound)

	_, err = s.sessionRepo.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(s.T(), err, models.ErrSessionNotFound)
}
