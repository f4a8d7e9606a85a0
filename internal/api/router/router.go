package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/salon-bot/internal/channels/whatsapp"
	"github.com/wolfman30/salon-bot/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/salon-bot/internal/http/middleware"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	WhatsAppWebhook *whatsapp.WebhookHandler
	MetricsHandler  http.Handler

	// Development endpoints. DevHandler is nil in production.
	DevHandler         *handlers.DevHandler
	DevAuthSecret      string
	DevRateLimiter     *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handlers.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.WhatsAppWebhook != nil {
		r.Get("/webhooks/whatsapp", cfg.WhatsAppWebhook.HandleVerification)
		r.Post("/webhooks/whatsapp", cfg.WhatsAppWebhook.HandleInbound)
	}

	if cfg.DevHandler != nil {
		r.Route("/dev", func(dev chi.Router) {
			if len(cfg.CORSAllowedOrigins) > 0 {
				dev.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
			}
			if cfg.DevRateLimiter != nil {
				dev.Use(httpmiddleware.RateLimit(cfg.DevRateLimiter))
			}
			if cfg.DevAuthSecret != "" {
				dev.Use(httpmiddleware.TesterJWT(cfg.DevAuthSecret))
			}
			dev.Post("/simulate", cfg.DevHandler.Simulate)
			dev.Get("/stats", cfg.DevHandler.Stats)
		})
	}

	return r
}
