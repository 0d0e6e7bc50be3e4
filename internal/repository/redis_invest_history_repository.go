package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ InvestHistoryRepository = (*redisInvestHistoryRepository)(nil)

// Keys:
//
//	invest_history:{id}                 -> JSON record
//	invest_history:session:{sessionID}  -> sorted set of record ids scored by turn
const redisHistoryKeyPrefix = "invest_history:"

type redisInvestHistoryRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisInvestHistoryRepository creates a Redis backed InvestHistoryRepository.
func NewRedisInvestHistoryRepository(client *redis.Client, logger *zap.Logger) InvestHistoryRepository {
	return &redisInvestHistoryRepository{
		client: client,
		logger: logger.Named("RedisInvestHistoryRepo"),
	}
}

func historyKey(id uuid.UUID) string {
	return redisHistoryKeyPrefix + id.String()
}

func sessionHistoryKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("%ssession:%s", redisHistoryKeyPrefix, sessionID)
}

func (r *redisInvestHistoryRepository) Save(ctx context.Context, history *models.InvestHistory) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history %s: %w", history.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, historyKey(history.ID), payload, 0)
		pipe.ZAdd(ctx, sessionHistoryKey(history.SessionID), redis.Z{
			Score:  float64(history.Turn),
			Member: history.ID.String(),
		})
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to store history",
			zap.Stringer("historyID", history.ID),
			zap.Stringer("sessionID", history.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("store history %s: %w", history.ID, err)
	}

	r.logger.Debug("History saved", zap.Stringer("historyID", history.ID), zap.Int("turn", history.Turn))
	return nil
}

func (r *redisInvestHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InvestHistory, error) {
	raw, err := r.client.Get(ctx, historyKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get history", zap.Stringer("historyID", id), zap.Error(err))
		return nil, fmt.Errorf("get history %s: %w", id, err)
	}

	var history models.InvestHistory
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("unmarshal history %s: %w", id, err)
	}
	return &history, nil
}

func (r *redisInvestHistoryRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.InvestHistory, error) {
	ids, err := r.client.ZRange(ctx, sessionHistoryKey(sessionID), 0, -1).Result()
	if err != nil {
		r.logger.Error("Failed to list history ids", zap.Stringer("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("list history for session %s: %w", sessionID, err)
	}

	histories := make([]models.InvestHistory, 0, len(ids))
	if len(ids) == 0 {
		return histories, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisHistoryKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Error("Failed to load history records", zap.Stringer("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("load history for session %s: %w", sessionID, err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Index entry without a record.
			r.logger.Warn("Dangling history index entry", zap.String("historyID", ids[i]))
			continue
		}
		var history models.InvestHistory
		if err := json.Unmarshal([]byte(s), &history); err != nil {
			return nil, fmt.Errorf("unmarshal history %s: %w", ids[i], err)
		}
		histories = append(histories, history)
	}
	return histories, nil
}
