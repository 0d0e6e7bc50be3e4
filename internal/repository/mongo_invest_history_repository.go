package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ InvestHistoryRepository = (*mongoInvestHistoryRepository)(nil)

type mongoInvestHistoryRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoInvestHistoryRepository creates a MongoDB backed InvestHistoryRepository.
func NewMongoInvestHistoryRepository(db *mongo.Database, collection string, logger *zap.Logger) InvestHistoryRepository {
	return &mongoInvestHistoryRepository{
		collection: db.Collection(collection),
		logger:     logger.Named("MongoInvestHistoryRepo"),
	}
}

// EnsureMongoHistoryIndexes creates the session lookup index. It is idempotent.
func EnsureMongoHistoryIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "turn", Value: 1}},
		Options: options.Index().SetName("session_turn_idx"),
	})
	if err != nil {
		return fmt.Errorf("create index on %s: %w", collection, err)
	}
	return nil
}

func (r *mongoInvestHistoryRepository) Save(ctx context.Context, history *models.InvestHistory) error {
	if _, err := r.collection.InsertOne(ctx, history); err != nil {
		r.logger.Error("Failed to insert history",
			zap.Stringer("historyID", history.ID),
			zap.Stringer("sessionID", history.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("insert history %s: %w", history.ID, err)
	}
	r.logger.Debug("History saved", zap.Stringer("historyID", history.ID), zap.Int("turn", history.Turn))
	return nil
}

func (r *mongoInvestHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InvestHistory, error) {
	var history models.InvestHistory
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&history); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get history", zap.Stringer("historyID", id), zap.Error(err))
		return nil, fmt.Errorf("get history %s: %w", id, err)
	}
	return &history, nil
}

func (r *mongoInvestHistoryRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.InvestHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "turn", Value: 1}, {Key: "started_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		r.logger.Error("Failed to query history", zap.Stringer("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("find history for session %s: %w", sessionID, err)
	}

	histories := make([]models.InvestHistory, 0)
	if err := cursor.All(ctx, &histories); err != nil {
		r.logger.Error("Failed to decode history", zap.Stringer("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("decode history for session %s: %w", sessionID, err)
	}
	return histories, nil
}
