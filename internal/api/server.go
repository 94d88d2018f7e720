package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/bizsuite-hq/bizsuite/internal/api/handlers"
	"github.com/bizsuite-hq/bizsuite/internal/api/middleware"
	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/config"
	"github.com/bizsuite-hq/bizsuite/internal/pkg/metrics"
)

type Server struct {
	cfg        *config.Config
	router     *chi.Mux
	httpServer *http.Server
}

type Services struct {
	Settings *services.SettingsService
	Webhook  *services.WebhookService
	Form     *services.FormService
	Process  *services.ProcessService
	Export   *services.ExportService
}

func NewServer(cfg *config.Config, svc *Services) *Server {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger())
	router.Use(middleware.Recoverer())
	router.Use(metrics.Middleware)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS - support multiple origins (comma-separated in config)
	allowedOrigins := strings.Split(cfg.App.FrontendURL, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(corsHandler.Handler)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	webhookHandler := handlers.NewWebhookHandler(svc.Webhook, svc.Settings)
	formHandler := handlers.NewFormHandler(svc.Form, svc.Settings)
	processHandler := handlers.NewProcessHandler(svc.Process)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings)
	exportHandler := handlers.NewExportHandler(svc.Export)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimiter.Limit)

		// Health
		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Live)
		r.Get("/health/ready", healthHandler.Ready)

		// Webhooks
		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/", webhookHandler.List)
			r.Post("/", webhookHandler.Create)
			r.Post("/test", webhookHandler.TestURL)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", webhookHandler.Get)
				r.Put("/", webhookHandler.Update)
				r.Patch("/", webhookHandler.Update)
				r.Delete("/", webhookHandler.Delete)
				r.Post("/activate", webhookHandler.Activate)
				r.Post("/deactivate", webhookHandler.Deactivate)
				r.Post("/test", webhookHandler.Test)
				r.Post("/send", webhookHandler.Send)
			})
		})

		// Forms
		r.Route("/forms", func(r chi.Router) {
			r.Get("/", formHandler.List)
			r.Post("/", formHandler.Create)
			r.Get("/field-types", formHandler.FieldTypes)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", formHandler.Get)
				r.Put("/", formHandler.Update)
				r.Patch("/", formHandler.Update)
				r.Delete("/", formHandler.Delete)
				r.Post("/fields", formHandler.AddField)
				r.Delete("/fields/{field}", formHandler.RemoveField)
				r.Post("/submit", formHandler.Submit)
			})
		})

		// Process models
		r.Route("/process-models", func(r chi.Router) {
			r.Get("/", processHandler.List)
			r.Post("/", processHandler.Create)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", processHandler.Get)
				r.Put("/", processHandler.Update)
				r.Patch("/", processHandler.Update)
				r.Delete("/", processHandler.Delete)
			})
		})
		r.Get("/process-templates", processHandler.Templates)
		r.Post("/process-templates/{id}/use", processHandler.UseTemplate)

		// Settings
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/", settingsHandler.Replace)
			r.Post("/reset", settingsHandler.Reset)
			r.Get("/{section}", settingsHandler.GetSection)
			r.Patch("/{section}", settingsHandler.UpdateSection)
		})

		// Backup
		r.Get("/export", exportHandler.Export)
		r.Post("/import", exportHandler.Import)
	})

	// Prometheus metrics
	router.Handle("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		cfg:        cfg,
		router:     router,
		httpServer: httpServer,
	}
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
