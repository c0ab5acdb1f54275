package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MichaelPain/FutHaxball-sub001/brackets"
	"github.com/MichaelPain/FutHaxball-sub001/models"
	"github.com/MichaelPain/FutHaxball-sub001/storage"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds every runtime setting of the service.
type Config struct {
	JWTSecretKey string
	ServerPort   int

	StorageBackend string
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	Scoring               models.ScoringTable
	SeedingPolicy         string
	SeedingRNGSeed        int64
	BracketPlacement      string
	AllowDirectCompletion bool

	ResultRateLimit    float64
	CORSAllowedOrigins []string
}

// Load reads the configuration from the environment. A .env file is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		StorageBackend:    stringEnv("STORAGE_BACKEND", BackendMemory),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     stringEnv("MONGO_DATABASE", "futhaxball"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		SeedingPolicy:     os.Getenv("SEEDING_POLICY"),
		BracketPlacement:  os.Getenv("BRACKET_PLACEMENT"),
	}

	switch cfg.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.Scoring.Win, err = intEnv("SCORING_WIN", models.DefaultScoring.Win); err != nil {
		return nil, err
	}
	if cfg.Scoring.Draw, err = intEnv("SCORING_DRAW", models.DefaultScoring.Draw); err != nil {
		return nil, err
	}
	if cfg.Scoring.Loss, err = intEnv("SCORING_LOSS", models.DefaultScoring.Loss); err != nil {
		return nil, err
	}

	rngSeed, err := intEnv("SEEDING_RNG_SEED", 0)
	if err != nil {
		return nil, err
	}
	cfg.SeedingRNGSeed = int64(rngSeed)
	if _, err := brackets.ParseSeedingPolicy(cfg.SeedingPolicy, cfg.SeedingRNGSeed); err != nil {
		return nil, fmt.Errorf("invalid SEEDING_POLICY: %w", err)
	}
	if _, err := brackets.ParsePlacement(cfg.BracketPlacement); err != nil {
		return nil, fmt.Errorf("invalid BRACKET_PLACEMENT: %w", err)
	}

	if v := os.Getenv("ALLOW_DIRECT_COMPLETION"); v != "" {
		if cfg.AllowDirectCompletion, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid ALLOW_DIRECT_COMPLETION environment variable: %w", err)
		}
	}

	cfg.ResultRateLimit = 5
	if v := os.Getenv("RESULT_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("RESULT_RATE_LIMIT must be a positive number, got %q", v)
		}
		cfg.ResultRateLimit = limit
	}

	cfg.CORSAllowedOrigins = []string{"*"}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	}

	if err := cfg.validateR2(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// R2 returns the archive bucket settings.
func (c *Config) R2() storage.CloudflareR2UploaderConfig {
	return storage.CloudflareR2UploaderConfig{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		BucketName:      c.R2BucketName,
		PublicBaseURL:   c.R2PublicBaseURL,
	}
}

// ArchiveEnabled reports whether any R2 setting was supplied. Partial settings fail Load.
func (c *Config) ArchiveEnabled() bool {
	return c.R2().Enabled()
}

func (c *Config) validateR2() error {
	if !c.ArchiveEnabled() {
		return nil
	}
	return c.R2().Validate()
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}
