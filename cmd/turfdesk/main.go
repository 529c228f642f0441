package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mzanetti/turfdesk/internal/assistant"
	"github.com/mzanetti/turfdesk/internal/booking"
	"github.com/mzanetti/turfdesk/internal/brain"
	"github.com/mzanetti/turfdesk/internal/checkpoint"
	"github.com/mzanetti/turfdesk/internal/config"
	"github.com/mzanetti/turfdesk/internal/extract"
	"github.com/mzanetti/turfdesk/internal/httpapi"
	"github.com/mzanetti/turfdesk/internal/intent"
	"github.com/mzanetti/turfdesk/internal/knowledge"
	"github.com/mzanetti/turfdesk/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := booking.NewStore(ctx, cfg.DatabaseURL, cfg.BookingsCSVPath)
	if err != nil {
		log.Fatalf("booking store init failed: %v", err)
	}
	defer store.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("booking store: postgres")
	} else {
		log.Printf("booking store: csv (%s)", cfg.BookingsCSVPath)
	}

	registry, err := checkpoint.NewRegistry(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("checkpoint registry init failed: %v", err)
	}
	defer registry.Close()

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:    cfg.BrainMode,
		HTTPURL: cfg.BrainHTTPURL,
		APIKey:  cfg.BrainAPIKey,
		Model:   cfg.BrainModel,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}
	log.Printf("brain adapter mode: %s", cfg.BrainMode)

	router := intent.NewRouter(adapter)
	answerer := knowledge.NewAnswerer(adapter)
	extractor := extract.NewLLMExtractor(adapter)
	negotiator := booking.NewNegotiator(extractor, store, cfg.AbandonToken)

	svc := assistant.New(router, answerer, negotiator, registry, store, metrics)
	svc.SetDefaultUser(cfg.DefaultUserID)

	api := httpapi.New(cfg, svc, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
