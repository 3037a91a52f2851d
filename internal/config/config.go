package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level application configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
	Export     ExportConfig     `toml:"export"`
	Extraction ExtractionConfig `toml:"extraction"`
	OpenAI     OpenAIConfig     `toml:"openai"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	ReadTimeoutSec     int      `toml:"read_timeout_sec"`
	WriteTimeoutSec    int      `toml:"write_timeout_sec"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ExportConfig holds defaults used by the format encoders
type ExportConfig struct {
	ProviderName    string `toml:"provider_name"`
	ProviderVersion string `toml:"provider_version"`
}

// ExtractionConfig holds the tuning parameters of the script import
// pipeline. The thresholds were tuned against sample scripts and are
// deliberately configurable rather than hard-coded.
type ExtractionConfig struct {
	RoleStoplist      []string `toml:"role_stoplist"`
	TechnicalMarkers  []string `toml:"technical_markers"`
	MinTechnicalLen   int      `toml:"min_technical_len"`
	RolesSectionLimit int      `toml:"roles_section_limit"`
}

// OpenAIConfig holds settings for the NER fallback of role discovery
type OpenAIConfig struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Default returns a Config populated with application defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeoutSec:  30,
			WriteTimeoutSec: 60,
		},
		Storage: StorageConfig{
			SQLitePath: "cuex.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Export: ExportConfig{
			ProviderName:    "CueX Lichtassistent",
			ProviderVersion: "4.0.1",
		},
		Extraction: ExtractionConfig{
			RoleStoplist:      []string{"SZENE", "SCENE", "ORT", "ZEIT", "CUE", "LICHT", "LIGHT", "TON", "SOUND", "MUSIK", "MUSIC", "ROLLEN", "ROLES", "DATUM"},
			TechnicalMarkers:  []string{"licht", "light", "ton", "sound", "cue", "musik", "music", "effekt", "effect"},
			MinTechnicalLen:   20,
			RolesSectionLimit: 100,
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
	}
}

// Load reads the TOML configuration file at path. Missing file is not an
// error: defaults are returned so the server can start without a config.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, statErr := os.Stat(path)
	if path != "" && !os.IsNotExist(statErr) {
		if _, err := toml.DecodeFile(filepath.Clean(path), cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	// Environment override for the API key so it never has to live in the file
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Extraction.MinTechnicalLen < 0 {
		return fmt.Errorf("invalid min_technical_len: %d", c.Extraction.MinTechnicalLen)
	}
	return nil
}

// Addr returns the host:port the server binds to
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
