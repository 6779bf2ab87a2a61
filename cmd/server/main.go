package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/sone/backend/internal/core"
	"github.com/anonto42/sone/backend/internal/discovery"
	"github.com/anonto42/sone/backend/internal/models"
	"github.com/anonto42/sone/backend/internal/repositories"
	"github.com/anonto42/sone/backend/internal/router"
	"github.com/anonto42/sone/backend/internal/scheduler"
	"github.com/anonto42/sone/backend/pkg/config"
	"github.com/anonto42/sone/backend/pkg/firebase"
	"github.com/anonto42/sone/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// --- Initialize Repositories ---
	soneRepo := repositories.NewPostgresSoneRepository(db.Postgres)
	if err := soneRepo.AutoMigrate(); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	knownRepo := repositories.NewMongoKnownPostRepository(db.MongoDB)
	albumRepo := repositories.NewMongoAlbumRepository(db.MongoDB)
	postRepo := repositories.NewMongoPostRepository(db.MongoDB)
	saver := repositories.NewConfigurationSaver(soneRepo, albumRepo)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelLoad()
	known, err := knownRepo.LoadKnown(loadCtx)
	if err != nil {
		log.Fatalf("Failed to load known posts: %v", err)
	}

	// --- Core ---
	sched := scheduler.New(64)
	c := core.New(core.Deps{
		Toucher:    saver,
		KnownStore: knownRepo,
		KnownSones: soneRepo,
		Delayer:    sched,
		KnownPosts: known,
	}, core.Options{
		FirstStart:              cfg.FirstStart,
		LockedNotificationDelay: cfg.LockedNotificationDelay,
		StartupTimeout:          cfg.StartupNotificationTimeout,
	})
	saver.Watch(c.Directory, c.Albums)

	if err := loadLocalSones(loadCtx, c, soneRepo, albumRepo); err != nil {
		log.Fatalf("Failed to load local sones: %v", err)
	}

	sched.Start()
	c.Start()
	if err := sched.Every("configuration-saver", cfg.ConfigSaveInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := saver.Flush(ctx); err != nil {
			log.Printf("Error saving configuration: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule configuration saver: %v", err)
	}

	// --- Discovery of remote Sones and posts ---
	poller := discovery.NewPoller(c, soneRepo, postRepo)
	poll := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := poller.Poll(ctx); err != nil {
			log.Printf("Error polling for new content: %v", err)
		}
	}
	sched.After(0, poll)
	if err := sched.Every("discovery", cfg.DiscoveryInterval, poll); err != nil {
		log.Fatalf("Failed to schedule discovery: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = cfg.IsProduction()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	deps := router.Dependencies{Core: c, Links: soneRepo, JWTSecret: cfg.JWTSecret}
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		deps.FirebaseAuth = firebaseApp.AuthClient
	}
	router.SetupRoutes(e, deps)

	// Start server in a goroutine
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	sched.Shutdown(10 * time.Second)

	if err := saver.Flush(ctx); err != nil {
		log.Printf("Error saving configuration on shutdown: %v", err)
	}
	log.Println("Shutdown complete")
}

// loadLocalSones restores every stored local Sone and its albums
func loadLocalSones(ctx context.Context, c *core.Core, sones repositories.SoneRepository, albums repositories.AlbumRepository) error {
	snapshots, err := sones.LoadLocalSones()
	if err != nil {
		return err
	}
	for _, snapshot := range snapshots {
		sone := models.RestoreSone(snapshot)
		c.SoneDiscovered(sone, true)
		c.SoneStarted(sone)

		docs, err := albums.LoadAlbums(ctx, sone.ID())
		if err != nil {
			return err
		}
		c.Albums.Restore(sone.ID(), docs)
	}
	log.Printf("Loaded %d local sones", len(snapshots))
	return nil
}
