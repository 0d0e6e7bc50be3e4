package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/messaging"
	"github.com/team-popo-world/back-repo/internal/models"
	"github.com/team-popo-world/back-repo/internal/search"
)

// EmotionLogService relays emotion logs to the search index and queries it.
type EmotionLogService interface {
	Publish(ctx context.Context, userID, logType, message string) (*models.EmotionLog, error)
	Search(ctx context.Context, query search.EmotionLogQuery) ([]models.EmotionLog, error)
}

type emotionLogServiceImpl struct {
	publisher messaging.EmotionLogPublisher
	index     search.EmotionLogIndex
	logger    *zap.Logger
}

// NewEmotionLogService creates an EmotionLogService.
func NewEmotionLogService(publisher messaging.EmotionLogPublisher, index search.EmotionLogIndex, logger *zap.Logger) EmotionLogService {
	return &emotionLogServiceImpl{
		publisher: publisher,
		index:     index,
		logger:    logger.Named("EmotionLogService"),
	}
}

func (s *emotionLogServiceImpl) Publish(ctx context.Context, userID, logType, message string) (*models.EmotionLog, error) {
	userID, logType = strings.TrimSpace(userID), strings.TrimSpace(logType)
	if userID == "" || logType == "" {
		return nil, fmt.Errorf("%w: userId and type are required", models.ErrInvalidInput)
	}

	entry := &models.EmotionLog{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    logType,
		Message: message,
	}
	if err := s.publisher.PublishEmotionLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("relay emotion log: %w", err)
	}
	return entry, nil
}

func (s *emotionLogServiceImpl) Search(ctx context.Context, query search.EmotionLogQuery) ([]models.EmotionLog, error) {
	if query.Size < 0 || query.Size > search.MaxSearchSize {
		return nil, fmt.Errorf("%w: size must be between 0 and %d", models.ErrInvalidInput, search.MaxSearchSize)
	}
	logs, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search emotion logs: %w", err)
	}
	return logs, nil
}
