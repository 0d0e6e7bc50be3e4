package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/search"
)

// EmotionLogProcessor indexes relayed emotion logs.
type EmotionLogProcessor struct {
	index    search.EmotionLogIndex
	validate *validator.Validate
	logger   *zap.Logger
}

// NewEmotionLogProcessor creates an EmotionLogProcessor.
func NewEmotionLogProcessor(index search.EmotionLogIndex, validate *validator.Validate, logger *zap.Logger) *EmotionLogProcessor {
	return &EmotionLogProcessor{
		index:    index,
		validate: validate,
		logger:   logger.Named("EmotionLogProcessor"),
	}
}

func (p *EmotionLogProcessor) Process(ctx context.Context, body []byte) error {
	var entry models.EmotionLog
	if err := json.Unmarshal(body, &entry); err != nil {
		return fmt.Errorf("%w: decode emotion log: %v", ErrMalformedMessage, err)
	}
	if err := p.validate.Struct(&entry); err != nil {
		return fmt.Errorf("%w: emotion log: %v", ErrMalformedMessage, err)
	}
	// Producers outside this service may omit the id.
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	if err := p.index.Index(ctx, &entry); err != nil {
		return fmt.Errorf("index emotion log %s: %w", entry.ID, err)
	}

	p.logger.Info("Emotion log indexed", zap.Stringer("logID", entry.ID), zap.String("type", entry.Type))
	return nil
}
