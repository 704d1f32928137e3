package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/ndwallace05/ariav3/internal/adapters/http"
	"github.com/ndwallace05/ariav3/internal/app"
	"github.com/ndwallace05/ariav3/internal/config"
	"github.com/ndwallace05/ariav3/internal/dispatch"
	"github.com/ndwallace05/ariav3/internal/token"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	issuer, err := token.NewIssuer(cfg.APIKey, cfg.APISecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token issuer")
	}
	dispatcher, err := dispatch.NewClient(cfg.ServerURL, issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dispatch client")
	}

	svc := app.NewConnectionService(cfg.ServerURL, cfg.RequireAuth, dispatcher, issuer, app.NewRegistry())

	r := router.SetupRouter(cfg, svc)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("aria connection broker started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
