package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetiq/internal/amqp"
	"budgetiq/internal/auth"
	"budgetiq/internal/config"
	apphttp "budgetiq/internal/http"
	"budgetiq/internal/insight"
	applog "budgetiq/internal/log"
	"budgetiq/internal/mail"
	"budgetiq/internal/report"
	"budgetiq/internal/storage"
)

func main() {
	// Load .env for local development; absent in containers.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
		logger.Error("migrations failed", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("storage initialization failed", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	mailer := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom, logger)

	var llm insight.CompletionClient
	if cfg.LLMEnabled() {
		llm = insight.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		logger.Info("LLM delegation enabled", "model", cfg.LLMModel)
	} else {
		logger.Info("LLM delegation disabled, using rule-based replies")
	}

	agg := insight.NewAggregator(repo)
	responder := insight.NewResponder(agg, llm, logger)

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("AMQP initialization failed", applog.FieldError, err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled, entry events will not be published")
	}

	var sheets *report.SheetsExporter
	if cfg.GoogleSpreadsheetID != "" {
		sheets, err = report.NewSheetsExporter(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Google Sheets initialization failed", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		FrontendURL:        cfg.FrontendURL,
		BackendURL:         cfg.BackendURL,
		UploadDir:          cfg.UploadDir,
		MaxAvatarBytes:     cfg.MaxAvatarBytes,
		Events:             events,
		Sheets:             sheets,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, repo, tokens, agg, responder, mailer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting budgetiq server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
