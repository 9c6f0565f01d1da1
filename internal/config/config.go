// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/thywilljoshua/ddsgen/internal/ai"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no credential is set.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

const (
	DefaultAddr             = ":8080"
	DefaultGenerateInterval = 10 * time.Second
	DefaultGenerateBurst    = 3
	DefaultRenderScale      = 2.0
)

type Config struct {
	APIKey           string
	TextModel        string
	ImageModel       string
	ImageStyleSuffix string
	Addr             string
	GenerateInterval time.Duration
	GenerateBurst    int
	RenderScale      float64
	OptimizePDF      bool
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment take precedence over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		APIKey:           getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		TextModel:        getEnv("DDS_TEXT_MODEL", ai.DefaultTextModel),
		ImageModel:       getEnv("DDS_IMAGE_MODEL", ai.DefaultImageModel),
		ImageStyleSuffix: os.Getenv("DDS_IMAGE_STYLE_SUFFIX"),
		Addr:             getEnv("DDS_ADDR", DefaultAddr),
		GenerateBurst:    DefaultGenerateBurst,
	}

	var err error
	if cfg.GenerateInterval, err = durationEnv("DDS_GENERATE_INTERVAL", DefaultGenerateInterval); err != nil {
		return Config{}, err
	}
	if cfg.RenderScale, err = floatEnv("DDS_RENDER_SCALE", DefaultRenderScale); err != nil {
		return Config{}, err
	}
	if cfg.RenderScale <= 0 {
		return Config{}, fmt.Errorf("DDS_RENDER_SCALE must be positive, got %v", cfg.RenderScale)
	}
	if cfg.OptimizePDF, err = boolEnv("DDS_OPTIMIZE_PDF", true); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequireAPIKey fails when the Gemini credential is missing.
func (c Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
