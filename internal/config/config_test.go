package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/thywilljoshua/ddsgen/internal/ai"
)

var allKeys = []string{
	"GEMINI_API_KEY", "API_KEY", "DDS_TEXT_MODEL", "DDS_IMAGE_MODEL",
	"DDS_IMAGE_STYLE_SUFFIX", "DDS_ADDR", "DDS_GENERATE_INTERVAL",
	"DDS_RENDER_SCALE", "DDS_OPTIMIZE_PDF",
}

// clearEnv blanks every setting for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		TextModel:        ai.DefaultTextModel,
		ImageModel:       ai.DefaultImageModel,
		Addr:             DefaultAddr,
		GenerateInterval: DefaultGenerateInterval,
		GenerateBurst:    DefaultGenerateBurst,
		RenderScale:      DefaultRenderScale,
		OptimizePDF:      true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(cfg.RequireAPIKey(), ErrMissingAPIKey) {
		t.Error("RequireAPIKey should fail without a key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("DDS_ADDR", "127.0.0.1:9000")
	t.Setenv("DDS_GENERATE_INTERVAL", "2s")
	t.Setenv("DDS_RENDER_SCALE", "1.5")
	t.Setenv("DDS_OPTIMIZE_PDF", "false")
	t.Setenv("DDS_IMAGE_STYLE_SUFFIX", "aquarela")

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "fallback-key" {
		t.Errorf("APIKey = %q, want fallback from API_KEY", cfg.APIKey)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.GenerateInterval != 2*time.Second ||
		cfg.RenderScale != 1.5 || cfg.OptimizePDF || cfg.ImageStyleSuffix != "aquarela" {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("GEMINI_API_KEY", "primary-key")
	cfg, err = Load(noEnvFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "primary-key" {
		t.Errorf("APIKey = %q, want primary-key", cfg.APIKey)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey: %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DDS_TEXT_MODEL")
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DDS_TEXT_MODEL=gemini-test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("DDS_TEXT_MODEL") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TextModel != "gemini-test" {
		t.Errorf("TextModel = %q, want value from env file", cfg.TextModel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"DDS_GENERATE_INTERVAL", "soon"},
		{"DDS_RENDER_SCALE", "big"},
		{"DDS_RENDER_SCALE", "0"},
		{"DDS_OPTIMIZE_PDF", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(noEnvFile(t)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
