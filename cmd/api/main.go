// =============================================================================
// MAIN.GO - CASINO WAGERS API ENTRY POINT
// =============================================================================
// Startup order:
//
//   1. Load configuration from environment variables (.env in development)
//   2. Initialise structured logging
//   3. Open the user store: PostgreSQL when DATABASE_URL is set (migrations
//      run first), otherwise in memory
//   4. Pick the card source: remote deck API or a local shoe
//   5. Connect the optional Redis bet limiter
//   6. Build the session store, its sweeper and the services
//   7. Serve HTTP until SIGINT/SIGTERM, then shut down gracefully
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JoshBaneyCS/casino-wagers/internal/api"
	"github.com/JoshBaneyCS/casino-wagers/internal/auth"
	"github.com/JoshBaneyCS/casino-wagers/internal/blackjack"
	"github.com/JoshBaneyCS/casino-wagers/internal/cards"
	"github.com/JoshBaneyCS/casino-wagers/internal/config"
	"github.com/JoshBaneyCS/casino-wagers/internal/db"
	"github.com/JoshBaneyCS/casino-wagers/internal/logging"
	"github.com/JoshBaneyCS/casino-wagers/internal/ratelimit"
	"github.com/JoshBaneyCS/casino-wagers/internal/session"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
	"github.com/JoshBaneyCS/casino-wagers/internal/wager"
)

const (
	shutdownTimeout = 30 * time.Second
	betRateWindow   = time.Minute
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("casino api stopped")
	}
}

func run() error {
	// -------------------------------------------------------------------------
	// STEP 1: Configuration and logging
	// -------------------------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.LogLevel, cfg.LogPretty)
	if err := cfg.ValidateProductionConfig(); err != nil {
		log.Warn().Msg(err.Error())
	}

	ctx := context.Background()

	// -------------------------------------------------------------------------
	// STEP 2: User store
	// -------------------------------------------------------------------------
	var repo users.Repository
	if cfg.DatabaseURL != "" {
		if err := db.RunMigrations(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			return err
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		repo = users.NewPostgresRepository(database)
	} else {
		log.Warn().Msg("DATABASE_URL not set, users are kept in memory")
		repo = users.NewMemoryRepository()
	}

	// -------------------------------------------------------------------------
	// STEP 3: Card source
	// -------------------------------------------------------------------------
	var source cards.Source
	if cfg.DeckAPIURL != "" {
		source = cards.NewHTTPSource(cfg.DeckAPIURL, cfg.DeckCount, cfg.DeckAPITimeout)
		log.Info().Str("url", cfg.DeckAPIURL).Msg("using remote deck API")
	} else {
		source = cards.NewLocalSource(cfg.DeckCount)
	}

	// -------------------------------------------------------------------------
	// STEP 4: Optional bet limiter
	// -------------------------------------------------------------------------
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client, err := ratelimit.Connect(ctx, ratelimit.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.BetRateLimit, betRateWindow)
		log.Info().Int("per_minute", cfg.BetRateLimit).Msg("bet rate limit enabled")
	}

	// -------------------------------------------------------------------------
	// STEP 5: Sessions and services
	// -------------------------------------------------------------------------
	engine := wager.NewEngine(repo, nil)
	game := blackjack.NewGame(engine, source)

	store := session.NewStore(session.Options{
		Secret:       cfg.SessionSecret,
		CookieName:   cfg.SessionCookieName,
		TTL:          cfg.SessionTTL,
		Secure:       cfg.CookieSecure,
		ReleaseRound: game.Release,
	})
	sweeper, err := session.NewSweeper(store, cfg.SessionSweepInterval)
	if err != nil {
		return err
	}
	sweeper.Start()

	router := api.NewRouter(api.RouterConfig{
		Sessions:        store,
		Users:           repo,
		Auth:            auth.NewService(repo, cfg.DefaultBalance, 0),
		Engine:          engine,
		Blackjack:       game,
		Limiter:         limiter,
		AllowedOrigins:  cfg.AllowedOrigins,
		LeaderboardSize: cfg.LeaderboardSize,
		InternalAPIKey:  cfg.InternalAPIKey,
	})

	// -------------------------------------------------------------------------
	// STEP 6: Serve until signalled
	// -------------------------------------------------------------------------
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      api.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("casino api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		sweeper.Stop(ctx)
		return fmt.Errorf("serve: %w", err)
	case sig := <-shutdownChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sweeper.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
