package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/repository"
)

// InvestHistoryProcessor appends relayed turn history to the history store.
type InvestHistoryProcessor struct {
	repo     repository.InvestHistoryRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewInvestHistoryProcessor creates an InvestHistoryProcessor.
func NewInvestHistoryProcessor(repo repository.InvestHistoryRepository, validate *validator.Validate, logger *zap.Logger) *InvestHistoryProcessor {
	return &InvestHistoryProcessor{
		repo:     repo,
		validate: validate,
		logger:   logger.Named("InvestHistoryProcessor"),
	}
}

func (p *InvestHistoryProcessor) Process(ctx context.Context, body []byte) error {
	var history models.InvestHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return fmt.Errorf("%w: decode invest history: %v", ErrMalformedMessage, err)
	}
	if err := p.validate.Struct(&history); err != nil {
		return fmt.Errorf("%w: invest history %s: %v", ErrMalformedMessage, history.ID, err)
	}

	if err := p.repo.Save(ctx, &history); err != nil {
		return fmt.Errorf("save invest history %s: %w", history.ID, err)
	}

	p.logger.Info("Invest history stored",
		zap.Stringer("historyID", history.ID),
		zap.Stringer("sessionID", history.SessionID),
		zap.Int("turn", history.Turn),
	)
	return nil
}
