package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	DriverDatabricks = "databricks"
	DriverPostgres   = "postgres"
)

type Config struct {
	Port               int
	LogLevel           string
	SessionSecret      string
	SessionTTL         time.Duration
	RedisAddr          string
	WarehouseDriver    string
	PostgresUser       string
	GraphvizDot        string
	CORSAllowedOrigins []string
	// Databricks holds the connection values found in the environment; the
	// connect form may override each of them.
	Databricks Env
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&c.SessionSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.WarehouseDriver, validation.Required, validation.In(DriverDatabricks, DriverPostgres)),
		validation.Field(&c.GraphvizDot, validation.Required),
	)
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return l
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("warehouse_driver", DriverDatabricks)
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("graphviz_dot", "dot")
	v.SetDefault("cors_allowed_origins", "")
}

// Load reads the application settings from the environment (and a local .env
// file, loaded on import) and validates them.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:            v.GetInt("port"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		SessionSecret:   v.GetString("session_secret"),
		SessionTTL:      v.GetDuration("session_ttl"),
		RedisAddr:       v.GetString("redis_addr"),
		WarehouseDriver: strings.ToLower(v.GetString("warehouse_driver")),
		PostgresUser:    v.GetString("postgres_user"),
		GraphvizDot:     v.GetString("graphviz_dot"),
		Databricks: Env{
			Host:     v.GetString(strings.ToLower(EnvHost)),
			HTTPPath: v.GetString(strings.ToLower(EnvHTTPPath)),
			Token:    v.GetString(strings.ToLower(EnvToken)),
		},
	}

	for _, origin := range strings.Split(v.GetString("cors_allowed_origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
		cfg.SessionSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
