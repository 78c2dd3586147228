package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultMongoURI    = "mongodb://127.0.0.1:27017"
	DefaultMongoDB     = "kinokod"
	DefaultStatsSpec   = "@daily"
	DefaultPollTimeout = 30
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Mongo    MongoConfig    `json:"mongo"`
	Stats    StatsConfig    `json:"stats"`
	// Workspace holds logs and other runtime files.
	Workspace string `json:"workspace"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// AdminIDs is the fixed admin allow-list (Telegram user ids).
	AdminIDs    []int64 `json:"adminIds"`
	PollTimeout int     `json:"pollTimeout,omitempty"`
}

type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type StatsConfig struct {
	Enabled bool `json:"enabled"`
	// Spec is a robfig/cron schedule expression.
	Spec string `json:"spec,omitempty"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Telegram: TelegramConfig{PollTimeout: DefaultPollTimeout},
		Mongo: MongoConfig{
			URI:      DefaultMongoURI,
			Database: DefaultMongoDB,
		},
		Stats:     StatsConfig{Enabled: true, Spec: DefaultStatsSpec},
		Workspace: filepath.Join(home, ".kinokod"),
	}
}

func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".kinokod")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// LoadConfig reads the config file if present and applies environment
// overrides on top. Environment always wins over the file.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if token := os.Getenv("KINOKOD_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if token := os.Getenv("BOT_TOKEN"); token != "" && cfg.Telegram.Token == "" {
		cfg.Telegram.Token = token
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if db := os.Getenv("MONGO_DB"); db != "" {
		cfg.Mongo.Database = db
	}
	if ids := os.Getenv("ADMIN_IDS"); ids != "" {
		parsed, err := ParseAdminIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("parse ADMIN_IDS: %w", err)
		}
		cfg.Telegram.AdminIDs = parsed
	}

	if cfg.Telegram.PollTimeout <= 0 {
		cfg.Telegram.PollTimeout = DefaultPollTimeout
	}
	if cfg.Stats.Spec == "" {
		cfg.Stats.Spec = DefaultStatsSpec
	}
	if cfg.Workspace == "" {
		cfg.Workspace = DefaultConfig().Workspace
	}

	return cfg, nil
}

// ParseAdminIDs parses a comma-separated list of Telegram user ids.
func ParseAdminIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// AdminSet builds the immutable admin lookup used by the gate and router.
func (c *Config) AdminSet() map[int64]bool {
	set := make(map[int64]bool, len(c.Telegram.AdminIDs))
	for _, id := range c.Telegram.AdminIDs {
		set[id] = true
	}
	return set
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
