// Package config loads the process configuration for the boostgen design
// pipeline from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all process-level settings. The electrical design inputs
// themselves live in the design spec file referenced by Design.SpecPath.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	Logging     struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Catalog struct {
		Dir string `env:"CATALOG_DIR" envDefault:"catalogs"`
	}
	Design struct {
		SpecPath      string  `env:"DESIGN_SPEC" envDefault:"design_spec.json"`
		OutputDir     string  `env:"OUTPUT_DIR" envDefault:"outputs"`
		MaxIterations int     `env:"DESIGN_MAX_ITERATIONS" envDefault:"50"`
		MaxFrequency  float64 `env:"DESIGN_MAX_F_SW" envDefault:"1000000"`
	}
	Monitor struct {
		Enabled         bool          `env:"MONITOR_ENABLED" envDefault:"false"`
		Port            int           `env:"MONITOR_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"MONITOR_READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout    time.Duration `env:"MONITOR_WRITE_TIMEOUT" envDefault:"10s"`
		IdleTimeout     time.Duration `env:"MONITOR_IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"MONITOR_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Default to debug logging in development
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	// Ensure the output directory exists; iteration state is persisted there.
	if err := os.MkdirAll(cfg.Design.OutputDir, 0o755); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetEnv returns the value of the environment variable or the default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt returns the value of the environment variable as int or the default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
