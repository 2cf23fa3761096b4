package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/peachcleanhq/chat-platform/internal/automation"
	"github.com/peachcleanhq/chat-platform/internal/conversation"
	httpmiddleware "github.com/peachcleanhq/chat-platform/internal/http/middleware"
	"github.com/peachcleanhq/chat-platform/internal/leads"
	"github.com/peachcleanhq/chat-platform/internal/messenger"
	"github.com/peachcleanhq/chat-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *conversation.Handler
	WebhookHandler     *messenger.WebhookHandler
	AutomationHandler  *automation.Handler
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.ChatHandler.HealthCheck)
		public.Post("/chat", cfg.ChatHandler.Chat)
		if cfg.WebhookHandler != nil {
			public.Get("/webhook", cfg.WebhookHandler.HandleVerification)
			public.Post("/webhook", cfg.WebhookHandler.HandleInbound)
		}
		if cfg.AutomationHandler != nil {
			public.Post("/automation/turn", cfg.AutomationHandler.Turn)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin endpoints behind JWT auth.
	if cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads", cfg.LeadsHandler.List)
			admin.Get("/leads/{id}", cfg.LeadsHandler.Get)
		})
	}

	return r
}
