package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/config"
	"github.com/dmikh/workmarket/internal/database"
	"github.com/dmikh/workmarket/internal/handlers"
	"github.com/dmikh/workmarket/internal/kafka"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/middleware"
	"github.com/dmikh/workmarket/internal/outbox"
	"github.com/dmikh/workmarket/internal/processor"
	"github.com/dmikh/workmarket/internal/repository"
	"github.com/dmikh/workmarket/internal/service"
	"github.com/dmikh/workmarket/internal/ws"
)

const outboxPollInterval = 2 * time.Second

type App struct {
	server   *http.Server
	db       *sql.DB
	outbox   *outbox.Processor
	producer kafka.Producer
}

func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ParseFlags()

	if err := logger.Initialize("debug"); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Error("Database connection failed", zap.Error(err))
		return nil, err
	}

	var proc processor.ClientInterface = processor.Disabled{}
	if cfg.ProcessorAPIKey != "" {
		proc = processor.NewClient(cfg.ProcessorAddress, cfg.ProcessorAPIKey)
	} else {
		logger.Log.Warn("payment processor is not configured, payment intents and payouts are disabled")
	}

	hub := ws.NewHub()

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	txManager := repository.NewTxManager(db)

	userService := service.NewUserService(userRepo)
	jobService := service.NewJobService(jobRepo)
	paymentService := service.NewPaymentService(txManager, paymentRepo, walletRepo, jobRepo, userRepo,
		outboxRepo, notificationRepo, proc, hub, decimal.NewFromFloat(cfg.CommissionRate))
	withdrawalService := service.NewWithdrawalService(txManager, withdrawalRepo, walletRepo,
		outboxRepo, notificationRepo, proc, hub)
	chatService := service.NewChatService(chatRepo, userRepo, outboxRepo, notificationRepo, hub)

	handler := handlers.NewHandler(userService, jobService, paymentService, withdrawalService,
		chatService, hub, cfg.SecretKey)
	limiter := middleware.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r := handlers.NewRouter(handler, cfg.SecretKey, limiter)

	app := &App{
		server: &http.Server{
			Addr:    cfg.RunAddress,
			Handler: r,
		},
		db: db,
	}

	if cfg.KafkaBrokers != "" {
		app.producer = kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		app.outbox = outbox.NewProcessor(outboxRepo, app.producer, outboxPollInterval)
	} else {
		logger.Log.Warn("kafka brokers are not configured, platform events stay in the outbox")
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.outbox != nil {
		go a.outbox.Run(ctx)
	}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed to start", zap.Error(err))
		}
	}()
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	logger.Log.Info("shutting down server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown failed", zap.Error(err))
		return err
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Log.Error("failed to close kafka producer", zap.Error(err))
		}
	}

	logger.Log.Info("closing database connection...")
	if err := a.db.Close(); err != nil {
		logger.Log.Error("failed to close database", zap.Error(err))
		return err
	}

	return nil
}
