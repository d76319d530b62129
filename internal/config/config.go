package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings of the service.
type Config struct {
	AppPort          string
	DatabaseURL      string
	DBLogLevel       string
	JWTSecret        string
	JWTExpiration    time.Duration
	RabbitMQURL      string
	RabbitMQExchange string
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("DATABASE_URL", "sqlite:///data.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRATION", 300*time.Second)
	v.SetDefault("RABBITMQ_URL", "") // empty disables domain events
	v.SetDefault("RABBITMQ_EXCHANGE", "inventory")
	v.AutomaticEnv()

	cfg := Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBLogLevel:       v.GetString("DB_LOG_LEVEL"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTExpiration:    v.GetDuration("JWT_EXPIRATION"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.JWTExpiration <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRATION must be positive, got %s", cfg.JWTExpiration)
	}
	return cfg, nil
}
