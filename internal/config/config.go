// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Server   ServerConfig
	Planner  PlannerConfig
	Trackers TrackerConfig
	Slack    SlackConfig
	Timezone string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT verification settings. Tokens are minted by the
// accounts service; this server only verifies them.
type JWTConfig struct {
	Secret string //nolint:gosec // G117: JWT signing secret config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// PlannerConfig holds settings for the external planning service.
type PlannerConfig struct {
	URL         string
	Token       string
	DayCapacity int
}

// TrackerConfig holds API tokens for issue tracker integrations.
// An empty token leaves that provider unregistered.
type TrackerConfig struct {
	GitHubToken  string
	TodoistToken string
	ClickUpToken string
	JiraToken    string
}

// SlackConfig holds Slack notification settings.
type SlackConfig struct {
	BotToken  string
	ChannelID string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("PLANAR_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("PLANAR_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("PLANAR_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("PLANAR_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("PLANAR_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvFloat("PLANAR_SERVER_RATE_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("PLANAR_SERVER_RATE_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dayCapacity, err := getEnvInt("PLANAR_PLANNER_DAY_CAPACITY", 2)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("PLANAR_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("PLANAR_DB_USER", "planar"),
			Password: getEnv("PLANAR_DB_PASSWORD", ""),
			DBName:   getEnv("PLANAR_DB_NAME", "planar_dev"),
			SSLMode:  getEnv("PLANAR_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("PLANAR_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("PLANAR_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("PLANAR_JWT_SECRET", ""),
		},
		Server: ServerConfig{
			Addr:           getEnv("PLANAR_SERVER_ADDR", ":8080"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
		},
		Planner: PlannerConfig{
			URL:         getEnv("PLANAR_PLANNER_URL", "http://localhost:8090"),
			Token:       getEnv("PLANAR_PLANNER_TOKEN", ""),
			DayCapacity: dayCapacity,
		},
		Trackers: TrackerConfig{
			GitHubToken:  getEnv("PLANAR_GITHUB_TOKEN", ""),
			TodoistToken: getEnv("PLANAR_TODOIST_TOKEN", ""),
			ClickUpToken: getEnv("PLANAR_CLICKUP_TOKEN", ""),
			JiraToken:    getEnv("PLANAR_JIRA_TOKEN", ""),
		},
		Slack: SlackConfig{
			BotToken:  getEnv("PLANAR_SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("PLANAR_SLACK_CHANNEL", ""),
		},
		Timezone: getEnv("PLANAR_TIMEZONE", "Local"),
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("PLANAR_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("PLANAR_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("PLANAR_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("PLANAR_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("PLANAR_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("PLANAR_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("PLANAR_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("PLANAR_SERVER_RATE_RPS must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("PLANAR_SERVER_RATE_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}
	if c.Planner.URL == "" {
		return errors.New("PLANAR_PLANNER_URL is required")
	}
	if c.Planner.DayCapacity < 1 {
		return fmt.Errorf("PLANAR_PLANNER_DAY_CAPACITY must be >= 1, got %d", c.Planner.DayCapacity)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}
