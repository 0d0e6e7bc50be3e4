package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/config"
	"github.com/team-popo-world/back-repo/internal/repository"
)

const storeConnectTimeout = 10 * time.Second

// OpenHistoryStore connects the configured history store backend. The returned func releases it.
func OpenHistoryStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.InvestHistoryRepository, func(), error) {
	switch cfg.HistoryStore {
	case config.HistoryStoreRedis:
		client, err := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close Redis client", zap.Error(err))
			}
		}
		return repository.NewRedisInvestHistoryRepository(client, logger), closeFn, nil

	case config.HistoryStoreMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warn("Failed to disconnect MongoDB client", zap.Error(err))
			}
		}

		db := client.Database(cfg.MongoDatabase)
		indexCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()
		if err := repository.EnsureMongoHistoryIndexes(indexCtx, db, cfg.HistoryCollection); err != nil {
			closeFn()
			return nil, nil, err
		}
		return repository.NewMongoInvestHistoryRepository(db, cfg.HistoryCollection, logger), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown history store %q", cfg.HistoryStore)
	}
}

// ConnectMongo creates a MongoDB client and pings the primary.
func ConnectMongo(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB")
	return client, nil
}

// ConnectRedis creates a Redis client and pings it.
func ConnectRedis(ctx context.Context, addr string, db int, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping Redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("db", db))
	return client, nil
}
