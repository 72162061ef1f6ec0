package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zappabad/wipeout/internal/engine"
)

// Config is the process-level configuration.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Storage StorageConfig `yaml:"storage"`
}

// GameConfig tunes the round simulation.
type GameConfig struct {
	RoundDurationSeconds int     `yaml:"round_duration_seconds"`
	TickMillis           int     `yaml:"tick_millis"`
	RestartDelaySeconds  int     `yaml:"restart_delay_seconds"`
	RescueAmount         float64 `yaml:"rescue_amount"`
	RescueCooldownSecs   int     `yaml:"rescue_cooldown_seconds"`
	RescueDailyLimit     int     `yaml:"rescue_daily_limit"`
	Seed                 int64   `yaml:"seed"` // 0 means time-seeded
}

// StorageConfig controls where the account record lives.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// Load reads the YAML file at path and applies .env / environment
// overrides. An empty path yields pure defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

// Engine translates the file-level knobs onto the engine defaults.
func (c *Config) Engine() engine.Config {
	ec := engine.DefaultConfig()
	if c.Game.RoundDurationSeconds > 0 {
		ec.RoundDuration = time.Duration(c.Game.RoundDurationSeconds) * time.Second
	}
	if c.Game.TickMillis > 0 {
		ec.TickInterval = time.Duration(c.Game.TickMillis) * time.Millisecond
	}
	if c.Game.RestartDelaySeconds > 0 {
		ec.RestartDelay = time.Duration(c.Game.RestartDelaySeconds) * time.Second
	}
	if c.Game.RescueAmount > 0 {
		ec.Rescue.Amount = c.Game.RescueAmount
	}
	if c.Game.RescueCooldownSecs > 0 {
		ec.Rescue.Cooldown = time.Duration(c.Game.RescueCooldownSecs) * time.Second
	}
	if c.Game.RescueDailyLimit > 0 {
		ec.Rescue.DailyLimit = c.Game.RescueDailyLimit
	}
	return ec
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WIPEOUT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("WIPEOUT_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Game.Seed = n
		}
	}
	if v := os.Getenv("WIPEOUT_ROUND_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Game.RoundDurationSeconds = n
		}
	}
}

func setDefaults(cfg *Config) {
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "wipeout.db"
	}
}
