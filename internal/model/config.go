package model

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port         int
	Debug        bool
	AllowedHosts []string

	JWTSecret string
	CLISecret string

	Database DatabaseConfig

	RedisAddr     string
	RedisPassword string

	GeminiAPIKey    string
	CurrencyAPIKey  string
	CurrencyAPIHost string

	SchedulerEnabled bool
	InsightCron      string
}

type DatabaseConfig struct {
	Database string
	Password string
	Username string
	Port     string
	Host     string
}

// LoadConfig reads the server configuration from the environment.
// The database settings are required, everything else has a default.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:             envInt("PORT", 8000),
		Debug:            envBool("DEBUG", false),
		AllowedHosts:     splitHosts(os.Getenv("ALLOWED_HOSTS")),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CLISecret:        os.Getenv("CLI_SECRET"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		GeminiAPIKey:     os.Getenv("G_API_KEY"),
		CurrencyAPIKey:   os.Getenv("CURRENCY_API_KEY"),
		CurrencyAPIHost:  os.Getenv("CURRENCY_API_HOST"),
		SchedulerEnabled: envBool("SCHEDULER_ENABLED", false),
		InsightCron:      envDefault("INSIGHT_CRON", "0 6 * * *"),
		Database: DatabaseConfig{
			Database: os.Getenv("DB_NAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Username: os.Getenv("DB_USER"),
			Port:     envDefault("DB_PORT", "5432"),
			Host:     os.Getenv("DB_HOST"),
		},
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET must be set")
	}
	for name, value := range map[string]string{
		"DB_NAME":     cfg.Database.Database,
		"DB_USER":     cfg.Database.Username,
		"DB_PASSWORD": cfg.Database.Password,
		"DB_HOST":     cfg.Database.Host,
	} {
		if value == "" {
			return cfg, fmt.Errorf("%s must be set", name)
		}
	}

	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitHosts(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			hosts = append(hosts, p)
		}
	}
	return hosts
}
