package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// FormatConsole writes human-readable lines.
	FormatConsole = "console"
	// FormatJSON writes one JSON object per line.
	FormatJSON = "json"
)

// Config holds logging configuration. The zero value is unusable; start
// from DefaultConfig.
type Config struct {
	Level      string          `json:"level"`
	Format     string          `json:"format"`
	File       string          `json:"file,omitempty"`
	MaxSizeMB  int             `json:"max_size_mb,omitempty"`
	MaxAgeDays int             `json:"max_age_days,omitempty"`
	MaxBackups int             `json:"max_backups,omitempty"`
	Compress   bool            `json:"compress,omitempty"`
	Components map[string]bool `json:"components"`

	// console overrides the stderr sink in tests.
	console io.Writer
}

// DefaultConfig returns the baseline configuration: info level, console
// format to stderr, rotation limits for an optional file sink, and only
// the app component enabled.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     FormatConsole,
		MaxSizeMB:  100,
		MaxAgeDays: 7,
		MaxBackups: 3,
		Compress:   true,
		Components: map[string]bool{
			string(ComponentApp):        true,
			string(ComponentClient):     false,
			string(ComponentPageData):   false,
			string(ComponentSearch):     false,
			string(ComponentSoundCloud): false,
			string(ComponentDownloader): false,
		},
	}
}

// LoadConfigFromFile reads a Config from a JSON file.
func LoadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read log config: %v", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse log config: %v", err)
	}
	return cfg, nil
}

// FromEnv applies PLAYFETCH_LOG_* environment overrides on top of cfg:
// PLAYFETCH_LOG_LEVEL, PLAYFETCH_LOG_FORMAT, PLAYFETCH_LOG_FILE, and
// PLAYFETCH_LOG_COMPONENTS as a comma-separated enable list ("all"
// enables everything).
func FromEnv(cfg Config) Config {
	if v := os.Getenv("PLAYFETCH_LOG_LEVEL"); v != "" {
		cfg.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PLAYFETCH_LOG_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PLAYFETCH_LOG_FILE"); v != "" {
		cfg.File = v
	}
	if v := os.Getenv("PLAYFETCH_LOG_COMPONENTS"); v != "" {
		if cfg.Components == nil {
			cfg.Components = make(map[string]bool)
		}
		for _, name := range strings.Split(v, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if name == "all" {
				for _, c := range allComponents {
					cfg.Components[string(c)] = true
				}
				continue
			}
			cfg.Components[name] = true
		}
	}
	return cfg
}

// EnableAll switches every component on. Used by the CLI verbose flag.
func (c Config) EnableAll() Config {
	if c.Components == nil {
		c.Components = make(map[string]bool)
	}
	for _, comp := range allComponents {
		c.Components[string(comp)] = true
	}
	return c
}

func (c Config) enabled(comp Component) bool {
	if c.Components == nil {
		return true
	}
	on, ok := c.Components[string(comp)]
	if !ok {
		return false
	}
	return on
}

func (c Config) consoleSink() io.Writer {
	if c.console != nil {
		return c.console
	}
	return os.Stderr
}
