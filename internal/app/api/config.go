package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port              string
	PostgresDSN       string
	AutoMigrate       bool
	SeedDemoCatalog   bool
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	AdminUserIDs      []string
	CORSOrigins       []string
	ReleaseMode       bool
}

// LoadConfig reads an optional .env file, then the environment, applies
// defaults and validates basic constraints. Variables already set in the
// environment win over the file.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		AutoMigrate:       envBool("AUTO_MIGRATE", true),
		SeedDemoCatalog:   envBool("SEED_DEMO_CATALOG", false),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  envBool("TEMPORAL_DISABLED", false),
		AdminUserIDs:      envList("ADMIN_USER_IDS"),
		CORSOrigins:       envList("CORS_ALLOWED_ORIGINS"),
		ReleaseMode:       strings.EqualFold(os.Getenv("ENVIRONMENT"), "production"),
	}
	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT must be a number between 1 and 65535, got %q", cfg.Port)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	return isTruthy(raw)
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
