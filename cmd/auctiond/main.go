// auctiond hosts one live auction session: it loads or seeds the
// session from a local SQLite store, exposes the operator surface over
// HTTP, mirrors state changes to attached views over WebSocket, and
// keeps other auctiond processes on the same store in step via NATS.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Vishal-code-E/ipl/internal/archive"
	"github.com/Vishal-code-E/ipl/internal/auction"
	"github.com/Vishal-code-E/ipl/internal/config"
	"github.com/Vishal-code-E/ipl/internal/gateway"
	"github.com/Vishal-code-E/ipl/internal/models"
	"github.com/Vishal-code-E/ipl/internal/seed"
	"github.com/Vishal-code-E/ipl/internal/storage/sqlite"
	"github.com/Vishal-code-E/ipl/internal/syncbus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	setupLogging()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("open store")
	}
	defer store.Close()

	bus, err := setupBus(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open sync bus")
	}
	defer bus.Close()

	appCfg := auction.Config{
		BidIncrement: cfg.Auction.BidIncrementLakh,
		SeedTeams:    loadSeedTeams(cfg),
		SeedPlayers:  loadSeedPlayers(cfg),
	}
	if cfg.Archive.DSN != "" {
		archiver, err := archive.New(ctx, cfg.Archive.DSN)
		if err != nil {
			log.Error().Err(err).Msg("archive disabled")
		} else {
			defer archiver.Close()
			appCfg.Archiver = archiver
		}
	}

	app := auction.NewApp(store, bus, appCfg)
	if err := app.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("initialize auction")
	}
	defer app.Close()

	manager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go manager.Start(ctx)

	mux := http.NewServeMux()
	gateway.NewHandler(app, manager).RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: c.Handler(mux),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("auctiond listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown http server")
	}
}

func setupLogging() {
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func setupBus(cfg *config.Config) (syncbus.Bus, error) {
	if cfg.Sync.NATSURL == "" {
		log.Info().Msg("sync bus: in-process only")
		return syncbus.NewLocalBus(), nil
	}
	log.Info().Str("url", cfg.Sync.NATSURL).Msg("sync bus: NATS")
	return syncbus.NewNATSBus(cfg.Sync.NATSURL, cfg.Sync.Subject)
}

// loadSeedTeams reads the roster seed file. A missing file is fine as
// long as the store is already seeded; Init fails otherwise.
func loadSeedTeams(cfg *config.Config) []models.Team {
	teams, err := seed.LoadTeams(cfg.Seed.Teams)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Seed.Teams).Msg("teams seed unavailable")
		return nil
	}
	return teams
}

func loadSeedPlayers(cfg *config.Config) []models.Player {
	players, err := seed.LoadPlayers(cfg.Seed.Players)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Seed.Players).Msg("players seed unavailable")
		return nil
	}
	return players
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
