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

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/config"
	"github.com/team-popo-world/back-repo/internal/logger"
	"github.com/team-popo-world/back-repo/internal/messaging"
	"github.com/team-popo-world/back-repo/internal/platform"
	"github.com/team-popo-world/back-repo/internal/search"
)

func main() {
	_ = godotenv.Load()
	log.Println("Starting relay worker...")
	if err := run(); err != nil {
		log.Fatalf("Worker exited: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(config.NeedBroker)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rabbitConn, err := platform.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	defer rabbitConn.Close()

	historyRepo, closeHistoryStore, err := platform.OpenHistoryStore(ctx, cfg, zapLogger)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer closeHistoryStore()

	esClient, err := search.NewClient(cfg.ElasticsearchAddresses)
	if err != nil {
		return err
	}
	emotionIndex := search.NewEmotionLogIndex(esClient, cfg.EmotionLogIndex, zapLogger)

	validate := validator.New()
	historyConsumer := messaging.NewConsumer(rabbitConn, cfg.InvestHistoryQueue, "invest-history-worker",
		messaging.NewInvestHistoryProcessor(historyRepo, validate, zapLogger), zapLogger)
	emotionConsumer := messaging.NewConsumer(rabbitConn, cfg.EmotionLogQueue, "emotion-log-worker",
		messaging.NewEmotionLogProcessor(emotionIndex, validate, zapLogger), zapLogger)

	historyConsumer.Start(ctx)
	emotionConsumer.Start(ctx)

	// Metrics only, the worker has no API.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	metricsServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLogger.Info("Starting metrics server", zap.String("port", cfg.Port))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// A lost connection stops the worker, the orchestrator restarts it with a fresh one.
	connClosed := rabbitConn.NotifyClose(make(chan *amqp.Error, 1))
	var runErr error
	select {
	case <-ctx.Done():
		zapLogger.Info("Shutdown signal received, stopping consumers...")
	case amqpErr := <-connClosed:
		runErr = errors.New("RabbitMQ connection lost")
		zapLogger.Error("RabbitMQ connection lost, stopping", zap.Any("reason", amqpErr))
	}

	historyConsumer.Stop()
	emotionConsumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Metrics server forced to shutdown", zap.Error(err))
	}

	if runErr != nil {
		return runErr
	}
	zapLogger.Info("Worker stopped")
	return nil
}
