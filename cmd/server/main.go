package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/config"
	"github.com/team-popo-world/back-repo/internal/database"
	"github.com/team-popo-world/back-repo/internal/handler"
	"github.com/team-popo-world/back-repo/internal/logger"
	"github.com/team-popo-world/back-repo/internal/messaging"
	"github.com/team-popo-world/back-repo/internal/middleware"
	"github.com/team-popo-world/back-repo/internal/platform"
	"github.com/team-popo-world/back-repo/internal/repository"
	"github.com/team-popo-world/back-repo/internal/search"
	"github.com/team-popo-world/back-repo/internal/service"
)

func main() {
	_ = godotenv.Load()
	log.Println("Starting invest API server...")
	if err := run(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)
	zapLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	location, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("game timezone: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Relational store ---
	dbPool, err := database.Connect(ctx, database.PoolConfig{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
	}, zapLogger)
	if err != nil {
		return fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	defer dbPool.Close()

	if err := database.NewMigrator(dbPool, zapLogger).Up(ctx); err != nil {
		return fmt.Errorf("apply database migrations: %w", err)
	}

	// --- Broker ---
	rabbitConn, err := platform.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	defer rabbitConn.Close()

	historyPublisher, err := messaging.NewRabbitMQInvestHistoryPublisher(rabbitConn, cfg.InvestHistoryQueue, zapLogger)
	if err != nil {
		return fmt.Errorf("create invest history publisher: %w", err)
	}
	defer historyPublisher.Close()

	emotionPublisher, err := messaging.NewRabbitMQEmotionLogPublisher(rabbitConn, cfg.EmotionLogQueue, zapLogger)
	if err != nil {
		return fmt.Errorf("create emotion log publisher: %w", err)
	}
	defer emotionPublisher.Close()

	// --- Read side of the relays ---
	historyRepo, closeHistoryStore, err := platform.OpenHistoryStore(ctx, cfg, zapLogger)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer closeHistoryStore()

	esClient, err := search.NewClient(cfg.ElasticsearchAddresses)
	if err != nil {
		return fmt.Errorf("create Elasticsearch client: %w", err)
	}
	emotionIndex := search.NewEmotionLogIndex(esClient, cfg.EmotionLogIndex, zapLogger)

	// --- Services ---
	scenarioRepo := repository.NewPgScenarioRepository(dbPool, zapLogger)
	sessionRepo := repository.NewPgSessionRepository(dbPool, zapLogger)
	investService := service.NewInvestService(scenarioRepo, sessionRepo, historyRepo, historyPublisher, location, zapLogger)
	emotionService := service.NewEmotionLogService(emotionPublisher, emotionIndex, zapLogger)
	investHandler := handler.NewInvestHandler(investService, emotionService, location, zapLogger)

	// --- HTTP ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapLogger(zapLogger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.ChildIDHeader, middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	investHandler.RegisterRoutes(router, cfg.BasePath, middleware.ChildIdentity(cfg.PlaceholderChildID()), handler.NewRequestMetrics())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", cfg.Port), zap.String("basePath", cfg.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Publishers reopen closed channels themselves. A lost connection stops the server so the
	// orchestrator restarts it with a fresh one.
	connClosed := rabbitConn.NotifyClose(make(chan *amqp.Error, 1))
	var runErr error
	select {
	case <-ctx.Done():
		zapLogger.Info("Shutdown signal received, stopping server...")
	case amqpErr := <-connClosed:
		runErr = errors.New("RabbitMQ connection lost")
		zapLogger.Error("RabbitMQ connection lost, stopping server", zap.Any("reason", amqpErr))
	case err := <-serveErr:
		runErr = fmt.Errorf("HTTP server listen: %w", err)
		zapLogger.Error("HTTP server listen error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	if runErr != nil {
		return runErr
	}
	zapLogger.Info("Server stopped")
	return nil
}
