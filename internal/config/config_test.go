package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LightBlast-creator/cuex/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.Server.Port)
	}
	if cfg.Extraction.MinTechnicalLen != 20 {
		t.Fatalf("unexpected default min_technical_len: %d", cfg.Extraction.MinTechnicalLen)
	}
	if cfg.Export.ProviderName == "" {
		t.Fatal("expected a default provider name")
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "cuex.toml")
	body := `
[server]
port = 9001

[extraction]
min_technical_len = 35
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Fatalf("file value not applied: %d", cfg.Server.Port)
	}
	if cfg.Extraction.MinTechnicalLen != 35 {
		t.Fatalf("file value not applied: %d", cfg.Extraction.MinTechnicalLen)
	}
	// Untouched sections keep their defaults
	if cfg.Storage.SQLitePath != "cuex.db" {
		t.Fatalf("unexpected storage path: %q", cfg.Storage.SQLitePath)
	}
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-from-env" {
		t.Fatalf("env override not applied: %q", cfg.OpenAI.APIKey)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuex.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = -1\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
