package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	IdentityURL string
	IdentityKey string // service role key, only needed by the seed tool
	JWKSURL     string // Constructed from IdentityURL + /auth/v1/.well-known/jwks.json
	CORSOrigins string
	TablePrefix string
	// Blob storage configuration
	S3Endpoint  string // empty for AWS
	S3Region    string
	S3Bucket    string
	S3KeyPrefix string
	S3AccessKey string
	S3SecretKey string
	// Debug flags
	Debug  bool
	LogDir string // when set, logs also go to rotating files under this dir
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	identityURL := getEnv("IDENTITY_URL", "")

	// Construct JWKS URL from the identity provider URL, overridable for
	// providers with a different key endpoint
	jwksURL := getEnv("JWKS_URL", identityURL+"/auth/v1/.well-known/jwks.json")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		IdentityURL: identityURL,
		IdentityKey: getEnv("IDENTITY_KEY", ""),
		JWKSURL:     jwksURL,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getEnv("TABLE_PREFIX", ""),
		// Blob storage configuration
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3KeyPrefix: getEnv("S3_KEY_PREFIX", "blobs/"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug:  getEnv("DEBUG", getDefaultDebug(env)) == "true",
		LogDir: getEnv("LOG_DIR", ""),
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
