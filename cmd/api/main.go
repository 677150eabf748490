// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clearview-home/sms-concierge/internal/config"
	"github.com/clearview-home/sms-concierge/internal/handler"
	"github.com/clearview-home/sms-concierge/internal/llm"
	"github.com/clearview-home/sms-concierge/internal/middleware"
	natsclient "github.com/clearview-home/sms-concierge/internal/nats"
	"github.com/clearview-home/sms-concierge/internal/service"
	"github.com/clearview-home/sms-concierge/internal/sms"
	"github.com/clearview-home/sms-concierge/internal/store"
	"github.com/clearview-home/sms-concierge/pkg/logger"
	"github.com/clearview-home/sms-concierge/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting SMS concierge")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, handler.ServiceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS for the audit stream, when configured
	var natsConn *natsclient.Client
	var events *natsclient.Publisher
	if cfg.NATSURL != "" {
		natsConn, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, audit stream disabled", zap.Error(err))
		} else {
			defer natsConn.Close()
			events = natsclient.NewPublisher(natsConn)
			if err := events.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure audit stream, audit disabled", zap.Error(err))
				events = nil
			}
		}
	}

	// Initialize LLM client; Anthropic wins when both keys are present
	var llmClient llm.Client
	if cfg.AnthropicAPIKey != "" {
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	} else {
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}

	// Initialize carrier client
	sender, err := sms.NewClient(sms.Config{
		AccountSID: cfg.CarrierAccountSID,
		AuthToken:  cfg.CarrierAuthToken,
		FromNumber: cfg.CarrierFromNumber,
		BaseURL:    cfg.CarrierBaseURL,
		Timeout:    cfg.CarrierTimeout,
	}, log)
	if err != nil {
		log.Error("failed to create carrier client", zap.Error(err))
		os.Exit(1)
	}

	// Initialize services
	conversations := store.NewMemory(cfg.MaxTranscript)
	composer := service.NewComposer(llmClient, log)
	conversationSvc := service.NewConversationService(conversations, composer, sender, events, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsConn)
	contactHandler := handler.NewContactHandler(conversationSvc, log)
	webhookHandler := handler.NewWebhookHandler(conversationSvc, log)
	conversationHandler := handler.NewConversationHandler(conversationSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Index and health endpoints
	r.Get("/", healthHandler.Index)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)).
			Post("/initiate-contact", contactHandler.Initiate)

		r.With(middleware.WebhookRateLimit(cfg.WebhookRateLimit, cfg.RateLimitWindow)).
			Post("/sms/webhook", webhookHandler.Inbound)

		// Inspection endpoints carry customer PII; gate them when a
		// secret is configured.
		r.Group(func(r chi.Router) {
			if cfg.AuthJWTSecret != "" {
				r.Use(middleware.Auth(cfg.AuthJWTSecret))
			}
			r.Get("/conversations", conversationHandler.List)
			r.Get("/conversations/{phone}", conversationHandler.Get)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
