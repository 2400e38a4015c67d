package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"cirrus/internal/auth"
	"cirrus/internal/config"
	"cirrus/internal/handler"
	"cirrus/internal/middleware"
	"cirrus/internal/repository/postgres"
	serviceAuth "cirrus/internal/service/auth"
	serviceDrive "cirrus/internal/service/drive"
	serviceUser "cirrus/internal/service/user"
	storageS3 "cirrus/internal/storage/s3"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()

	// Run schema migrations before taking traffic
	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	nodeRepo := postgres.NewNodeRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)

	// Create blob store
	s3Cfg := storageS3.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		KeyPrefix: cfg.S3KeyPrefix,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}
	s3Client, err := storageS3.NewClient(ctx, s3Cfg)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}
	blobStore, err := storageS3.NewBlobStore(ctx, s3Client, s3Cfg)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}
	logger.Info("blob store connected", "bucket", cfg.S3Bucket)

	// Create services
	guard := serviceAuth.NewOwnerAuthorizer(nodeRepo)
	driveService := serviceDrive.NewService(nodeRepo, blobStore, guard, logger)
	userService := serviceUser.NewService(userRepo, driveService, blobStore, logger)

	// Create handlers
	driveHandler := handler.NewDriveHandler(driveService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	healthHandler := handler.NewHealthHandler(pool, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()

	// Drive routes
	api.HandleFunc("GET /api/drive/{id}/children", driveHandler.ListChildren)
	api.HandleFunc("POST /api/drive/folders", driveHandler.CreateFolder)
	api.HandleFunc("POST /api/drive/{id}/files", driveHandler.UploadFile)
	api.HandleFunc("GET /api/drive/files/{id}", driveHandler.DownloadFile)
	api.HandleFunc("POST /api/drive/move", driveHandler.MoveNodes)
	api.HandleFunc("POST /api/drive/trash", driveHandler.MoveToTrash)
	api.HandleFunc("GET /api/drive/trash", driveHandler.ListTrash)
	api.HandleFunc("DELETE /api/drive/trash", driveHandler.DeleteFromTrash)
	api.HandleFunc("POST /api/drive/archive", driveHandler.DownloadArchive)

	// User routes
	api.HandleFunc("GET /api/users/me", userHandler.GetMe)
	api.HandleFunc("PATCH /api/users/me", userHandler.ChangeUsername)
	api.HandleFunc("DELETE /api/users/me", userHandler.DeleteAccount)
	api.HandleFunc("PUT /api/users/me/picture", userHandler.UploadProfilePicture)
	api.HandleFunc("GET /api/users/me/picture", userHandler.GetProfilePicture)

	// Health check bypasses auth; everything under /api/ requires a token
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("/api/", middleware.Auth(jwtVerifier)(api))

	// Build middleware chain
	// Order: CORS → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     root,
		ReadTimeout: 15 * time.Second,
		// Write timeout stays off so large archive and file streams are
		// never cut mid-transfer
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}
}
