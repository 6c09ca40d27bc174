package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-vault-backend/internal/config"
	"photo-vault-backend/internal/handlers"
	"photo-vault-backend/internal/middleware"
	"photo-vault-backend/internal/repository"
	"photo-vault-backend/internal/services"
	"photo-vault-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize media store
	media, err := newMediaStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media store")
	}

	// Initialize repositories
	photoRepo := repository.NewPhotoRepository(db)
	shareRepo := repository.NewShareRepository(db)
	albumRepo := repository.NewAlbumRepository(db)

	// Initialize services
	hub := services.NewGalleryHub()
	cache := services.NewListingCache(cfg.Cache.TTL())
	galleryService := services.NewGalleryService(photoRepo, shareRepo, media, cache, hub)
	albumService := services.NewAlbumService(albumRepo)
	sweeper := services.NewTrashSweeper(galleryService, photoRepo, cfg.Retention.Window(), cfg.Retention.SweepInterval())

	// Initialize handlers
	verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret)
	uploadLimiter := middleware.NewUploadLimiter(cfg.Limits.UploadPerMinute, cfg.Limits.UploadBurst)
	photoHandler := handlers.NewPhotoHandler(galleryService, cfg.Limits.MaxUploadBytes)
	albumHandler := handlers.NewAlbumHandler(albumService)
	wsHandler := handlers.NewWebSocketHandler(hub, verifier)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(verifier))

			r.Route("/photos", func(r chi.Router) {
				r.Get("/", photoHandler.List)
				r.With(middleware.RateLimitUploads(uploadLimiter)).Post("/upload", photoHandler.Upload)

				r.Get("/trash", photoHandler.ListTrash)
				r.Post("/trash/{name}/restore", photoHandler.Restore)
				r.Delete("/trash/{name}", photoHandler.DeleteForever)

				r.Get("/shared/by-me", photoHandler.SharedByMe)
				r.Get("/shared/with-me", photoHandler.SharedWithMe)

				r.Get("/{filename}", photoHandler.Get)
				r.Get("/{filename}/thumbnail", photoHandler.Thumbnail)
				r.Post("/{filename}/favorite", photoHandler.Favorite)
				r.Post("/{filename}/share", photoHandler.Share)
				r.Delete("/{filename}/share/{email}", photoHandler.Unshare)
				r.Get("/{filename}/shared-with", photoHandler.SharedWith)
				r.Delete("/{filename}", photoHandler.Trash)
			})

			r.Route("/albums", func(r chi.Router) {
				r.Get("/", albumHandler.List)
				r.Post("/add", albumHandler.Add)
			})
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.Handle)

	// Start the retention sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Backend).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	stopSweep()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newMediaStore builds the configured media store backend.
func newMediaStore(cfg *config.Config) (storage.MediaStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3Store(context.Background(), storage.S3Options{
			Region:    cfg.Storage.AWS.Region,
			Bucket:    cfg.Storage.AWS.S3Bucket,
			AccessKey: cfg.Storage.AWS.AccessKey,
			SecretKey: cfg.Storage.AWS.SecretKey,
			Endpoint:  cfg.Storage.AWS.Endpoint,
		})
	case "local":
		return storage.NewLocalStore(cfg.Storage.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
