package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Milestone marks a registration event shown on the dashboard chart.
type Milestone struct {
	Time  string `yaml:"time" json:"time"`
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
}

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Telegram struct {
		BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
		DryRun   bool   `yaml:"dry_run" env:"TELEGRAM_DRY_RUN"`
	} `yaml:"telegram"`

	Feed struct {
		URL         string `yaml:"url" env:"FEED_URL"`
		DownloadDir string `yaml:"download_dir" env:"FEED_DOWNLOAD_DIR"`
		Timeout     string `yaml:"timeout" env:"FEED_TIMEOUT"`
	} `yaml:"feed"`

	Directories struct {
		Data    string `yaml:"data" env:"DATA_DIR"`
		Reports string `yaml:"reports" env:"REPORTS_DIR"`
		Export  string `yaml:"export" env:"EXPORT_DIR"`
	} `yaml:"directories"`

	Scheduler struct {
		PollInterval   string `yaml:"poll_interval" env:"SCHEDULER_POLL_INTERVAL"`
		ReportInterval string `yaml:"report_interval" env:"SCHEDULER_REPORT_INTERVAL"`
	} `yaml:"scheduler"`

	Retention struct {
		KeepSnapshots int `yaml:"keep_snapshots" env:"RETENTION_KEEP_SNAPSHOTS"`
	} `yaml:"retention"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	// Semesters lists tracked semesters in display order, latest first.
	// The first entry is the active semester unless overridden.
	Semesters      []string               `yaml:"semesters"`
	ActiveSemester string                 `yaml:"active_semester" env:"ACTIVE_SEMESTER"`
	Milestones     map[string][]Milestone `yaml:"milestones"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "coursewatch"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.Feed.DownloadDir = "data/downloads"
	config.Feed.Timeout = "60s"

	config.Directories.Data = "data/snapshots"
	config.Directories.Reports = "data/reports"
	config.Directories.Export = "data/export"

	config.Scheduler.PollInterval = "30m"
	config.Scheduler.ReportInterval = "6h"

	config.Retention.KeepSnapshots = 50

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if _, err := time.ParseDuration(config.Scheduler.PollInterval); err != nil {
		return fmt.Errorf("invalid poll interval: %w", err)
	}

	if _, err := time.ParseDuration(config.Scheduler.ReportInterval); err != nil {
		return fmt.Errorf("invalid report interval: %w", err)
	}

	if config.Retention.KeepSnapshots < 1 {
		return fmt.Errorf("retention keep_snapshots must be at least 1")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Active returns the semester export/query operations should project by
// default: the configured active semester, or the first tracked one.
func (c *Config) Active() string {
	if c.ActiveSemester != "" {
		return c.ActiveSemester
	}
	if len(c.Semesters) > 0 {
		return c.Semesters[0]
	}
	return ""
}
