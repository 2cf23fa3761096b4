package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/peachcleanhq/chat-platform/internal/api/router"
	"github.com/peachcleanhq/chat-platform/internal/automation"
	appconfig "github.com/peachcleanhq/chat-platform/internal/config"
	"github.com/peachcleanhq/chat-platform/internal/conversation"
	"github.com/peachcleanhq/chat-platform/internal/leads"
	"github.com/peachcleanhq/chat-platform/internal/messenger"
	"github.com/peachcleanhq/chat-platform/internal/observability/metrics"
	"github.com/peachcleanhq/chat-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting chat-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Postgres is optional: transcripts and leads degrade to no-ops without it.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("open database failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Error("ping database failed", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("DATABASE_URL not set; transcripts and leads are not persisted")
	}

	// Session state lives in Redis when configured, in memory otherwise.
	var sessions conversation.SessionStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		sessions = conversation.NewRedisSessionStore(redis.NewClient(opts), cfg.SessionTTL)
	} else {
		logger.Warn("REDIS_ADDR not set; using in-memory sessions")
		sessions = conversation.NewMemorySessionStore()
	}

	chatMetrics := metrics.NewChatMetrics(prometheus.DefaultRegisterer)

	leadsRepo := leads.NewRepository(db)
	transcripts := conversation.NewTranscriptStore(db)
	chatService := conversation.NewService(sessions, leadsRepo, transcripts, chatMetrics, logger)

	chatHandler := conversation.NewHandler(chatService, chatMetrics, logger)

	var webhookHandler *messenger.WebhookHandler
	if cfg.MessengerVerifyToken != "" {
		sender := messenger.NewClient(cfg.MessengerAPIBaseURL, cfg.MessengerAccessToken)
		webhookHandler = messenger.NewWebhookHandler(
			cfg.MessengerVerifyToken, cfg.MessengerAppSecret,
			chatService, sender, chatMetrics, logger,
		)
	} else {
		logger.Warn("MESSENGER_VERIFY_TOKEN not set; messenger webhook disabled")
	}

	automationHandler := automation.NewHandler(
		chatService, automation.NewAdapter(cfg.AutomationBlockPrefix), logger,
	)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		WebhookHandler:     webhookHandler,
		AutomationHandler:  automationHandler,
		LeadsHandler:       leads.NewHandler(leadsRepo),
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
