package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"cirrus/internal/auth"
	"cirrus/internal/config"
	"cirrus/internal/repository/postgres"
	"cirrus/internal/seed"
	serviceAuth "cirrus/internal/service/auth"
	serviceDrive "cirrus/internal/service/drive"
	serviceUser "cirrus/internal/service/user"
	storageS3 "cirrus/internal/storage/s3"
)

// Seeds a demo user and drive tree into the configured database and bucket.
// Meant for development environments only.
func main() {
	email := flag.String("email", "demo@example.com", "Email for the demo user")
	password := flag.String("password", "demo-password", "Password for the demo user (identity provider only)")
	recreate := flag.Bool("recreate", false, "Delete and recreate the demo user in the identity provider first")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" {
		log.Fatal("refusing to seed a prod environment")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	nodeRepo := postgres.NewNodeRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)

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

	guard := serviceAuth.NewOwnerAuthorizer(nodeRepo)
	driveService := serviceDrive.NewService(nodeRepo, blobStore, guard, logger)
	userService := serviceUser.NewService(userRepo, driveService, blobStore, logger)

	// Register the demo user with the identity provider so the seeded drive
	// can actually be logged into. Skipped when no admin credentials exist.
	userID := "00000000-0000-0000-0000-000000000001"
	if cfg.IdentityURL != "" && cfg.IdentityKey != "" {
		admin := auth.NewAdminClient(cfg.IdentityURL, cfg.IdentityKey)
		if *recreate {
			if err := admin.DeleteUserByEmail(*email); err != nil {
				log.Fatalf("Failed to delete existing demo user: %v", err)
			}
		}
		userID, err = admin.CreateUser(*email, *password)
		if err != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		logger.Info("demo user registered", "user_id", userID, "email", *email)
	} else {
		logger.Warn("no identity admin credentials, seeding with a fixed user ID", "user_id", userID)
	}

	if err := seed.PlantDrive(ctx, userService, driveService, userID, *email, seed.DefaultTree(), logger); err != nil {
		log.Fatalf("Failed to seed drive: %v", err)
	}

	logger.Info("seed complete")
}
