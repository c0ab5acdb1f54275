package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

var allKeys = []string{
	"JWT_SECRET_KEY", "SERVER_PORT", "STORAGE_BACKEND", "DATABASE_URL", "MONGO_URI", "MONGO_DATABASE",
	"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL",
	"SCORING_WIN", "SCORING_DRAW", "SCORING_LOSS", "SEEDING_POLICY", "SEEDING_RNG_SEED",
	"BRACKET_PLACEMENT", "ALLOW_DIRECT_COMPLETION", "RESULT_RATE_LIMIT", "CORS_ALLOWED_ORIGINS",
}

func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, models.DefaultScoring, cfg.Scoring)
	assert.Equal(t, 5.0, cfg.ResultRateLimit)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.ArchiveEnabled())
	assert.False(t, cfg.AllowDirectCompletion)
}

func TestLoadOverrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/futhaxball")
	t.Setenv("SCORING_WIN", "2")
	t.Setenv("SEEDING_POLICY", "tiered_shuffle")
	t.Setenv("SEEDING_RNG_SEED", "42")
	t.Setenv("BRACKET_PLACEMENT", "seeded")
	t.Setenv("ALLOW_DIRECT_COMPLETION", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 2, cfg.Scoring.Win)
	assert.Equal(t, "tiered_shuffle", cfg.SeedingPolicy)
	assert.Equal(t, int64(42), cfg.SeedingRNGSeed)
	assert.True(t, cfg.AllowDirectCompletion)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":       {"JWT_SECRET_KEY": ""},
		"bad port":             {"SERVER_PORT": "70000"},
		"unknown backend":      {"STORAGE_BACKEND": "redis"},
		"postgres without dsn": {"STORAGE_BACKEND": "postgres"},
		"mongo without uri":    {"STORAGE_BACKEND": "mongo"},
		"bad seeding":          {"SEEDING_POLICY": "alphabetical"},
		"bad placement":        {"BRACKET_PLACEMENT": "random"},
		"bad scoring":          {"SCORING_DRAW": "one"},
		"bad rate":             {"RESULT_RATE_LIMIT": "0"},
		"partial r2":           {"R2_ACCOUNT_ID": "acct"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFullR2(t *testing.T) {
	cleanEnv(t)
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "archive")
	t.Setenv("R2_PUBLIC_BASE_URL", "https://cdn.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ArchiveEnabled())
}
