package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

// CacheConfig holds the TTL classes in seconds.
type CacheConfig struct {
	TaskTTLSeconds        int `yaml:"task_ttl_seconds"`
	LeaderboardTTLSeconds int `yaml:"leaderboard_ttl_seconds"`
	UserListTTLSeconds    int `yaml:"user_list_ttl_seconds"`
	AdminListTTLSeconds   int `yaml:"admin_list_ttl_seconds"`
	MaxEntries            int `yaml:"max_entries"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
		// Every store call is bounded by this budget; a blown budget is an
		// upstream timeout, not "no data".
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Files    FilesConfig    `yaml:"files"`
	Telegram TelegramConfig `yaml:"telegram"`
	Cache    CacheConfig    `yaml:"cache"`
	Archive  struct {
		RetentionDays int `yaml:"retention_days"`
	} `yaml:"archive"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	if cfg.Database.TimeoutSeconds <= 0 {
		cfg.Database.TimeoutSeconds = 5
	}
	if cfg.Database.TimeoutSeconds > 10 {
		cfg.Database.TimeoutSeconds = 10
	}
	if cfg.Cache.TaskTTLSeconds <= 0 {
		cfg.Cache.TaskTTLSeconds = 180
	}
	if cfg.Cache.LeaderboardTTLSeconds <= 0 {
		cfg.Cache.LeaderboardTTLSeconds = 180
	}
	if cfg.Cache.UserListTTLSeconds <= 0 {
		cfg.Cache.UserListTTLSeconds = 60
	}
	if cfg.Cache.AdminListTTLSeconds <= 0 {
		cfg.Cache.AdminListTTLSeconds = 300
	}
	if cfg.Archive.RetentionDays <= 0 {
		cfg.Archive.RetentionDays = 30
	}
	return &cfg
}

func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Database.TimeoutSeconds) * time.Second
}

func (c *CacheConfig) TaskTTL() time.Duration        { return time.Duration(c.TaskTTLSeconds) * time.Second }
func (c *CacheConfig) LeaderboardTTL() time.Duration { return time.Duration(c.LeaderboardTTLSeconds) * time.Second }
func (c *CacheConfig) UserListTTL() time.Duration    { return time.Duration(c.UserListTTLSeconds) * time.Second }
func (c *CacheConfig) AdminListTTL() time.Duration   { return time.Duration(c.AdminListTTLSeconds) * time.Second }
