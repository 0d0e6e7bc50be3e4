package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/messaging"
	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/repository"
)

// InvestService holds the invest game operations behind the HTTP API.
type InvestService interface {
	// GetChapter loads the chapter's current scenario and opens a new session for the child.
	GetChapter(ctx context.Context, childID, chapterID uuid.UUID) (*ChapterStart, error)
	// RecordTurn relays one trading action to the history store.
	RecordTurn(ctx context.Context, childID uuid.UUID, input TurnInput) (*models.InvestHistory, error)
	// ClearChapter closes an open session of the chapter with the reported outcome.
	ClearChapter(ctx context.Context, chapterID, sessionID uuid.UUID, outcome models.SessionOutcome) (*models.InvestSession, error)
	// CreateScenario stores a new scenario draft for the chapter.
	CreateScenario(ctx context.Context, childID, chapterID uuid.UUID, story string, isCustom bool) (*models.InvestScenario, error)
	// UpdateOldestScenario rewrites the oldest scenario that was never updated.
	UpdateOldestScenario(ctx context.Context, story string, isCustom bool) (*models.InvestScenario, error)
	// ListHistory returns the stored turns of a session ordered by turn.
	ListHistory(ctx context.Context, sessionID uuid.UUID) ([]models.InvestHistory, error)
}

// ChapterStart is the result of fetching a chapter.
type ChapterStart struct {
	Scenario *models.InvestScenario
	Session  *models.InvestSession
}

// TurnInput is one trading action as reported by the client.
type TurnInput struct {
	SessionID       uuid.UUID
	ChapterID       uuid.UUID
	Turn            int
	StartedAt       time.Time
	EndedAt         time.Time
	RiskLevel       int
	CurrentPoint    int
	BeforeValue     int
	CurrentValue    int
	InitialValue    int
	NumberOfShares  int
	Income          int
	TransactionType string
	PlusClick       int
	MinusClick      int
}

// Option customizes a service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type investServiceImpl struct {
	scenarios repository.ScenarioRepository
	sessions  repository.SessionRepository
	histories repository.InvestHistoryRepository
	publisher messaging.InvestHistoryPublisher
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewInvestService creates an InvestService. Timestamps are produced in the given game timezone.
func NewInvestService(
	scenarios repository.ScenarioRepository,
	sessions repository.SessionRepository,
	histories repository.InvestHistoryRepository,
	publisher messaging.InvestHistoryPublisher,
	location *time.Location,
	logger *zap.Logger,
	opts ...Option,
) InvestService {
	o := buildOptions(opts)
	if location == nil {
		location = time.UTC
	}
	return &investServiceImpl{
		scenarios: scenarios,
		sessions:  sessions,
		histories: histories,
		publisher: publisher,
		location:  location,
		now:       o.now,
		logger:    logger.Named("InvestService"),
	}
}

func (s *investServiceImpl) currentTime() time.Time {
	return s.now().In(s.location)
}

func (s *investServiceImpl) GetChapter(ctx context.Context, childID, chapterID uuid.UUID) (*ChapterStart, error) {
	log := s.logger.With(zap.Stringer("chapterID", chapterID), zap.Stringer("childID", childID))

	scenario, err := s.scenarios.FindByChapterID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, models.ErrScenarioNotFound) {
			log.Info("No scenario for requested chapter")
			return nil, err
		}
		return nil, fmt.Errorf("load scenario for chapter %s: %w", chapterID, err)
	}

	// Every fetch opens a new session, there is no reuse of an open one.
	session := &models.InvestSession{
		SessionID:  uuid.New(),
		ChildID:    childID,
		ChapterID:  chapterID,
		ScenarioID: scenario.ScenarioID,
		StartedAt:  s.currentTime(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("open session for chapter %s: %w", chapterID, err)
	}

	log.Info("Chapter started", zap.Stringer("sessionID", session.SessionID), zap.Stringer("scenarioID", scenario.ScenarioID))
	return &ChapterStart{Scenario: scenario, Session: session}, nil
}

func (s *investServiceImpl) RecordTurn(ctx context.Context, childID uuid.UUID, input TurnInput) (*models.InvestHistory, error) {
	if input.Turn < 1 {
		return nil, fmt.Errorf("%w: turn must be at least 1, got %d", models.ErrInvalidInput, input.Turn)
	}
	if input.SessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: sessionId is required", models.ErrInvalidInput)
	}
	if strings.TrimSpace(input.TransactionType) == "" {
		return nil, fmt.Errorf("%w: transaction_type is required", models.ErrInvalidInput)
	}
	if input.StartedAt.IsZero() || input.EndedAt.IsZero() {
		return nil, fmt.Errorf("%w: started_at and ended_at are required", models.ErrInvalidInput)
	}

	history := &models.InvestHistory{
		ID:              uuid.New(),
		SessionID:       input.SessionID,
		ChapterID:       input.ChapterID,
		ChildID:         childID,
		Turn:            input.Turn,
		RiskLevel:       input.RiskLevel,
		CurrentPoint:    input.CurrentPoint,
		BeforeValue:     input.BeforeValue,
		CurrentValue:    input.CurrentValue,
		InitialValue:    input.InitialValue,
		NumberOfShares:  input.NumberOfShares,
		Income:          input.Income,
		TransactionType: input.TransactionType,
		PlusClick:       input.PlusClick,
		MinusClick:      input.MinusClick,
		StartedAt:       input.StartedAt.Truncate(models.HistoryTimePrecision),
		EndedAt:         input.EndedAt.Truncate(models.HistoryTimePrecision),
	}

	if err := s.publisher.PublishInvestHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("relay turn %d of session %s: %w", input.Turn, input.SessionID, err)
	}

	s.logger.Debug("Turn relayed",
		zap.Stringer("historyID", history.ID),
		zap.Stringer("sessionID", history.SessionID),
		zap.Int("turn", history.Turn),
	)
	return history, nil
}

func (s *investServiceImpl) ClearChapter(ctx context.Context, chapterID, sessionID uuid.UUID, outcome models.SessionOutcome) (*models.InvestSession, error) {
	log := s.logger.With(zap.Stringer("sessionID", sessionID), zap.Stringer("chapterID", chapterID))

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			log.Warn("Clear requested for unknown session")
			return nil, err
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session.ChapterID != chapterID {
		log.Warn("Clear requested with wrong chapter", zap.Stringer("sessionChapterID", session.ChapterID))
		return nil, models.ErrSessionChapterMismatch
	}
	if session.State() == models.SessionStateClosed {
		return nil, models.ErrSessionAlreadyClosed
	}

	closed, err := s.sessions.Close(ctx, sessionID, s.currentTime(), outcome)
	if err != nil {
		if errors.Is(err, models.ErrSessionAlreadyClosed) || errors.Is(err, models.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("close session %s: %w", sessionID, err)
	}

	log.Info("Chapter cleared", zap.Bool("success", outcome.Success), zap.Int("profit", outcome.Profit))
	return closed, nil
}

func (s *investServiceImpl) CreateScenario(ctx context.Context, childID, chapterID uuid.UUID, story string, isCustom bool) (*models.InvestScenario, error) {
	if strings.TrimSpace(story) == "" {
		return nil, fmt.Errorf("%w: story must not be empty", models.ErrInvalidInput)
	}

	scenario := &models.InvestScenario{
		ScenarioID: uuid.New(),
		ChildID:    childID,
		ChapterID:  &chapterID,
		Story:      story,
		IsCustom:   isCustom,
		CreatedAt:  s.currentTime(),
	}
	if err := s.scenarios.Create(ctx, scenario); err != nil {
		return nil, fmt.Errorf("store scenario: %w", err)
	}

	s.logger.Info("Scenario created", zap.Stringer("scenarioID", scenario.ScenarioID), zap.Stringer("chapterID", chapterID))
	return scenario, nil
}

func (s *investServiceImpl) UpdateOldestScenario(ctx context.Context, story string, isCustom bool) (*models.InvestScenario, error) {
	if strings.TrimSpace(story) == "" {
		return nil, fmt.Errorf("%w: story must not be empty", models.ErrInvalidInput)
	}

	scenario, err := s.scenarios.UpdateOldestUnupdated(ctx, story, isCustom, s.currentTime())
	if err != nil {
		if errors.Is(err, models.ErrNoScenarioToUpdate) {
			return nil, err
		}
		return nil, fmt.Errorf("rotate scenario: %w", err)
	}
	return scenario, nil
}

func (s *investServiceImpl) ListHistory(ctx context.Context, sessionID uuid.UUID) ([]models.InvestHistory, error) {
	histories, err := s.histories.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list history of session %s: %w", sessionID, err)
	}
	return histories, nil
}
