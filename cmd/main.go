package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MichaelPain/FutHaxball-sub001/brackets"
	"github.com/MichaelPain/FutHaxball-sub001/config"
	"github.com/MichaelPain/FutHaxball-sub001/db"
	"github.com/MichaelPain/FutHaxball-sub001/engine"
	"github.com/MichaelPain/FutHaxball-sub001/handlers"
	"github.com/MichaelPain/FutHaxball-sub001/repositories"
	api "github.com/MichaelPain/FutHaxball-sub001/routes"
	"github.com/MichaelPain/FutHaxball-sub001/services"
	"github.com/MichaelPain/FutHaxball-sub001/storage"
)

const schedulerInterval = 30 * time.Second // How often registration deadlines are checked

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend))

	tournamentRepo, closeStore, err := openRepository(cfg, logger)
	if err != nil {
		logger.Error("failed to open tournament store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	seeding, err := brackets.ParseSeedingPolicy(cfg.SeedingPolicy, cfg.SeedingRNGSeed)
	if err != nil {
		logger.Error("invalid seeding policy", slog.Any("error", err))
		os.Exit(1)
	}
	placement, err := brackets.ParsePlacement(cfg.BracketPlacement)
	if err != nil {
		logger.Error("invalid bracket placement", slog.Any("error", err))
		os.Exit(1)
	}
	eng := engine.New(
		engine.WithScoring(cfg.Scoring),
		engine.WithSeeding(seeding),
		engine.WithPlacement(placement),
		engine.WithDirectCompletion(cfg.AllowDirectCompletion),
	)

	// The archiver is optional; a nil interface disables it.
	var archiver services.TournamentArchiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(context.Background(), cfg.R2())
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewArchiver(uploader)
		logger.Info("Cloudflare R2 archiver initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("archiving disabled, no R2 configuration")
	}

	tournamentService := services.NewTournamentService(tournamentRepo, eng, archiver, logger)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go runScheduler(schedulerCtx, tournamentService, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:       []byte(cfg.JWTSecretKey),
			AllowedOrigins:  cfg.CORSAllowedOrigins,
			ResultRateLimit: cfg.ResultRateLimit,
		},
		handlers.NewTournamentHandler(tournamentService),
		handlers.NewParticipantHandler(tournamentService),
		handlers.NewStageHandler(tournamentService),
		handlers.NewMatchHandler(tournamentService),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopScheduler()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// openRepository builds the configured tournament store and returns its cleanup func.
func openRepository(cfg *config.Config, logger *slog.Logger) (repositories.TournamentRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(context.Background(), dbConn); err != nil {
			closeDB(dbConn, logger)
			return nil, nil, err
		}
		logger.Info("database connection established")
		return repositories.NewPostgresTournamentRepository(dbConn), func() { closeDB(dbConn, logger) }, nil

	case config.BackendMongo:
		client, err := db.ConnectMongo(cfg.MongoURI, 10*time.Second)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("mongo connection established", slog.String("database", cfg.MongoDatabase))
		return repositories.NewMongoTournamentRepository(client.Database(cfg.MongoDatabase)), func() { disconnectMongo(client, logger) }, nil

	default:
		logger.Warn("using in-memory tournament store, data is lost on restart")
		return repositories.NewMemoryTournamentRepository(), func() {}, nil
	}
}

func closeDB(dbConn *sql.DB, logger *slog.Logger) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}

func disconnectMongo(client *mongo.Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("failed to disconnect from mongo", slog.Any("error", err))
		return
	}
	logger.Info("mongo connection closed")
}

// runScheduler closes registrations whose deadline has passed, once at startup and then on a ticker.
func runScheduler(ctx context.Context, svc services.TournamentService, logger *slog.Logger) {
	ticker := time.NewTicker(schedulerInterval)
	defer ticker.Stop()
	logger.Info("registration deadline scheduler started", slog.Duration("interval", schedulerInterval))

	run := func() {
		closed, err := svc.AutoCloseRegistrations(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Scheduler: auto close failed", slog.Any("error", err))
			return
		}
		if closed > 0 {
			logger.Info("Scheduler: registrations closed", slog.Int("count", closed))
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			logger.Info("registration deadline scheduler stopped")
			return
		case <-ticker.C:
			run()
		}
	}
}
