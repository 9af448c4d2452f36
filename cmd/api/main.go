package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smashpoint/league/internal/app"
	"github.com/smashpoint/league/internal/auth"
	"github.com/smashpoint/league/internal/guard"
	"github.com/smashpoint/league/internal/infra"
	"github.com/smashpoint/league/internal/ledger"
	"github.com/smashpoint/league/internal/provider"
)

const sweepInterval = time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Document store
	docs, closeStore, err := app.OpenDocumentStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	gate := ledger.NewGate(docs, logger)
	doc, err := gate.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load ledger document: %w", err)
	}
	report := ledger.CheckIntegrity(doc)
	if report.AllPassed {
		logger.Info("ledger document loaded", "revision", report.Revision, "players", len(doc.Players), "matches", len(doc.Matches))
	} else {
		// served anyway so an admin can repair it
		logger.Warn("ledger document failed integrity checks", "revision", report.Revision, "invariants", report.Invariants)
	}

	// Event fan-out
	hub := infra.NewWSHub(logger)
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	events := infra.NewEventFanout(producer, cfg.KafkaTopic, hub, logger)

	// External providers
	notifier := provider.NewWhatsAppClient(provider.WhatsAppConfig{
		PhoneID:      cfg.WhatsAppPhoneID,
		AccessToken:  cfg.WhatsAppAccessToken,
		TemplateName: cfg.WhatsAppTemplateName,
	}, nil, logger)
	if !cfg.WhatsAppConfigured() {
		logger.Warn("whatsapp not configured, TAC codes are only logged")
	}

	tacLimiter := guard.NewRateLimiter(cfg.TACRateLimit, cfg.TACRateWindow)

	r := app.NewRouter(app.RouterDeps{
		Config:     cfg,
		Gate:       gate,
		JWTMgr:     auth.NewJWTManager(cfg.JWTSecret, cfg.JWTPlayerExpiry),
		Logger:     logger,
		Notifier:   notifier,
		Events:     events,
		Hub:        hub,
		TACLimiter: tacLimiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting", "addr", srv.Addr, "store", cfg.StoreBackend, "default_season", cfg.DefaultSeason)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := tacLimiter.Sweep(); n > 0 {
					logger.Debug("swept rate limit keys", "count", n)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		// Shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		hub.Shutdown(shutdownCtx)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
