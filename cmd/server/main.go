package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordquest/internal/config"
	"wordquest/internal/content"
	"wordquest/internal/database"
	"wordquest/internal/engine"
	"wordquest/internal/games"
	"wordquest/internal/handlers"
	"wordquest/internal/notify"
	"wordquest/internal/security"
	"wordquest/internal/service"
)

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg)

	pools, err := content.LoadAll(cfg.ContentDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load content pools")
	}
	for kind, pool := range pools {
		coverage := pool.BandCoverage()
		for d := content.MinDifficulty; d <= content.MaxDifficulty; d++ {
			if coverage[d] == 0 {
				log.Warn().Str("kind", string(kind)).Int("difficulty", d).Msg("no items at difficulty, selection will fall back to the full range")
			}
		}
		log.Info().Str("kind", string(kind)).Int("items", pool.Len()).Msg("content pool loaded")
	}

	catalog := games.DefaultCatalog()
	if cfg.FeedbackDelay != nil {
		catalog = catalog.WithFeedbackDelay(*cfg.FeedbackDelay)
	}

	notifiers := notify.Multi{notify.LogNotifier{Log: log.Logger}}

	var journal *service.JournalService
	if cfg.JournalEnabled {
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		defer db.Close()
		log.Info().Str("type", cfg.DatabaseType).Msg("journal database ready")

		journal = service.NewJournalService(db)
		notifiers = append(notifiers, notify.NewJournalNotifier(journal.Repository(), 5*time.Second, log.Logger))
	}

	ctx := context.Background()
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize email service")
	}
	var emailNotifier *notify.EmailNotifier
	if emailService.IsEnabled() && cfg.ReportEmailTo != "" {
		emailNotifier = notify.NewEmailNotifier(emailService, cfg.ReportEmailTo, log.Logger)
		notifiers = append(notifiers, emailNotifier)
		log.Info().Str("to", cfg.ReportEmailTo).Msg("session reports enabled")
	}

	gameService, err := service.NewGameService(pools, catalog, service.GameServiceOptions{
		Notifier:  notifiers,
		Scheduler: engine.RealScheduler{},
		Logger:    log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create game service")
	}

	tokens, generated, err := security.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token issuer")
	}
	if generated {
		log.Warn().Msg("TOKEN_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	limiter := security.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	handler := handlers.NewRouter(
		handlers.NewGameHandler(gameService, tokens, journal),
		handlers.NewMiddleware(tokens, limiter),
	)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan struct{})
	go cleanupExpiredSessions(gameService, cfg.SessionTTL, cfg.SessionSweepInterval, stop)

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	gameService.Shutdown()
	if emailNotifier != nil {
		emailNotifier.Wait()
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
}

// cleanupExpiredSessions periodically removes idle sessions
func cleanupExpiredSessions(gameService *service.GameService, ttl, every time.Duration, stop <-chan struct{}) {
	if every <= 0 {
		every = 10 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := gameService.CleanupExpired(ttl); n > 0 {
				log.Info().Int("removed", n).Msg("expired sessions cleaned up")
			}
		}
	}
}
