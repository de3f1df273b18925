// Package daemon holds the bridge configuration: loading, defaults, and
// startup validation. Missing required settings are the only process-fatal
// errors in the system — everything past startup is handled at the boundary
// where it occurs.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full bridge configuration, read from TOML.
type Config struct {
	API      APIConfig      `toml:"api"`
	Engine   EngineConfig   `toml:"engine"`
	Telegram TelegramConfig `toml:"telegram"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// APIConfig controls the HTTP intake server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// EngineConfig controls the correlation workflow.
type EngineConfig struct {
	DedupWindow   duration `toml:"dedup_window"`
	PendingTTL    duration `toml:"pending_ttl"`
	NotifyQueue   int      `toml:"notify_queue"`
	AmountMarkers []string `toml:"amount_markers"`
}

// TelegramConfig holds the chat collaborator credentials. ChatID doubles as
// the single authorized sender identity.
type TelegramConfig struct {
	Token  string `toml:"token"`
	ChatID string `toml:"chat_id"`
}

// LedgerConfig selects and configures the ledger backend.
// Backend is "notion" or "sqlite"; with "notion", Path still locates the
// local archive database.
type LedgerConfig struct {
	Backend    string `toml:"backend"`
	Token      string `toml:"token"`
	DatabaseID string `toml:"database_id"`
	CategoryID string `toml:"category_id"`
	Path       string `toml:"path"`
}

// MetricsConfig gates the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// duration wraps time.Duration for TOML string values like "5s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8419,
		},
		Engine: EngineConfig{
			DedupWindow: duration{5 * time.Second},
			PendingTTL:  duration{time.Hour},
			NotifyQueue: 16,
		},
		Ledger: LedgerConfig{
			Backend: "sqlite",
			Path:    defaultDBPath(),
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadConfig reads the TOML file at path over the defaults.
// A missing file is not an error: defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the startup preconditions for serving.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	switch c.Ledger.Backend {
	case "sqlite":
		if c.Ledger.Path == "" {
			return fmt.Errorf("ledger.path is required for the sqlite backend")
		}
	case "notion":
		if c.Ledger.Token == "" || c.Ledger.DatabaseID == "" {
			return fmt.Errorf("ledger.token and ledger.database_id are required for the notion backend")
		}
	default:
		return fmt.Errorf("unknown ledger.backend %q", c.Ledger.Backend)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// DefaultConfigPath returns ~/.nota/config.toml, honoring NOTA_HOME.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), "config.toml")
}

func defaultDBPath() string {
	return filepath.Join(homeDir(), "nota.db")
}

func homeDir() string {
	if env := os.Getenv("NOTA_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nota")
}
