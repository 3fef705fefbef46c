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

	"github.com/cmdsage/linux-qa-platform/internal/config"
	"github.com/cmdsage/linux-qa-platform/internal/handler"
	"github.com/cmdsage/linux-qa-platform/internal/llm"
	"github.com/cmdsage/linux-qa-platform/internal/middleware"
	natsclient "github.com/cmdsage/linux-qa-platform/internal/nats"
	"github.com/cmdsage/linux-qa-platform/internal/service"
	"github.com/cmdsage/linux-qa-platform/internal/store"
	"github.com/cmdsage/linux-qa-platform/pkg/logger"
	"github.com/cmdsage/linux-qa-platform/pkg/tracing"
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

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "linux-qa-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing")
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Select the store: Postgres when a DSN is configured, in-memory otherwise
	var (
		st     store.Store
		pinger handler.Pinger
	)
	if cfg.DatabaseDSN != "" {
		gormStore, err := store.NewGormStore(cfg.DatabaseDSN)
		if err != nil {
			log.Error("failed to open database", zap.Error(err))
			os.Exit(1)
		}
		st = gormStore
		pinger = gormStore
	} else {
		log.Warn("no DATABASE_URL configured, using in-memory store")
		st = store.NewMemoryStore()
	}

	// Connect to NATS if configured; exchange events are optional
	var (
		nc        *natsclient.Client
		publisher service.ExchangePublisher
	)
	if cfg.NATSURL != "" {
		nc, err = natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer nc.Close()

		pub := natsclient.NewPublisher(nc)
		if err := pub.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
		publisher = pub
	}

	// Initialize the completion oracle
	var oracle llm.Client
	switch {
	case cfg.ModelServerURL != "":
		oracle, err = llm.NewLocalClient(cfg.ModelServerURL)
		if err != nil {
			log.Warn("failed to create model server client, answering disabled")
		}
	case cfg.OpenAIAPIKey != "":
		oracle, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
		if err != nil {
			log.Warn("failed to create OpenAI client, answering disabled")
		}
	case cfg.AnthropicAPIKey != "":
		oracle, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
		if err != nil {
			log.Warn("failed to create Anthropic client, answering disabled")
		}
	default:
		log.Warn("no oracle provider configured, answering disabled")
	}

	// Initialize services
	accountSvc := service.NewAccountService(st, log)
	conversationSvc := service.NewConversationService(st, st, publisher, log)
	answerSvc := service.NewAnswerService(oracle, accountSvc, conversationSvc, cfg.OracleTimeout, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(pinger, nc)
	accountHandler := handler.NewAccountHandler(accountSvc, log)
	conversationHandler := handler.NewConversationHandler(conversationSvc, log)
	askHandler := handler.NewAskHandler(answerSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Post("/register", accountHandler.Register)
	r.Post("/login", accountHandler.Login)
	r.Get("/user/{user_id}", accountHandler.Get)
	r.Post("/ask", askHandler.Ask)
	r.Get("/conversations/{user_id}", conversationHandler.List)
	r.Delete("/conversations/{conversation_id}/{user_id}", conversationHandler.Delete)

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
