package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseDriver      string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventSubject        string
	JWTSecret           string
	JWTTTL              time.Duration
	AuthCookieName      string
	ResultsCacheTTL     time.Duration
	JudgingRateLimit    int
	VoteRateLimit       int
	StrictTaskOwnership bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("JUDGING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Judging API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("events.subject", "judging.events")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("auth.cookie_name", "jwtToken")
	v.SetDefault("results.cache_ttl", "2m")
	v.SetDefault("rate_limit.judging", 30)
	v.SetDefault("rate_limit.votes", 60)
	v.SetDefault("tasks.strict_ownership", false)

	tokenTTL, err := time.ParseDuration(v.GetString("jwt.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	resultsTTL, err := time.ParseDuration(v.GetString("results.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid results cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseDriver:      strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventSubject:        v.GetString("events.subject"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTTTL:              tokenTTL,
		AuthCookieName:      v.GetString("auth.cookie_name"),
		ResultsCacheTTL:     resultsTTL,
		JudgingRateLimit:    v.GetInt("rate_limit.judging"),
		VoteRateLimit:       v.GetInt("rate_limit.votes"),
		StrictTaskOwnership: v.GetBool("tasks.strict_ownership"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.JudgingRateLimit <= 0 {
		cfg.JudgingRateLimit = 30
	}
	if cfg.VoteRateLimit <= 0 {
		cfg.VoteRateLimit = 60
	}

	return cfg, nil
}
