package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Email        EmailConfig
	Redis        RedisConfig
	Verification VerificationConfig
	Sweep        SweepConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type EmailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	Workers    int
	QueueSize  int
	MaxRetries int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type VerificationConfig struct {
	CodeTTL time.Duration
}

type SweepConfig struct {
	Schedule  string
	Retention time.Duration
}

// LoadConfig reads settings from the given .env file (if present) and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "coffee-shop-api")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("JWT_ACCESS_TTL_MINUTES", 5)
	v.SetDefault("JWT_REFRESH_TTL_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "noreply@coffeeshop.local")
	v.SetDefault("MAIL_WORKERS", 2)
	v.SetDefault("MAIL_QUEUE_SIZE", 100)
	v.SetDefault("MAIL_MAX_RETRIES", 3)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("VERIFICATION_TTL_MINUTES", 60)
	v.SetDefault("UNVERIFIED_RETENTION_HOURS", 48)
	v.SetDefault("SWEEP_SCHEDULE", "@hourly")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			AccessTTL:  time.Duration(v.GetInt("JWT_ACCESS_TTL_MINUTES")) * time.Minute,
			RefreshTTL: time.Duration(v.GetInt("JWT_REFRESH_TTL_HOURS")) * time.Hour,
		},
		Email: EmailConfig{
			Host:       v.GetString("SMTP_HOST"),
			Port:       v.GetInt("SMTP_PORT"),
			User:       v.GetString("SMTP_USER"),
			Password:   v.GetString("SMTP_PASS"),
			From:       v.GetString("EMAIL_FROM"),
			Workers:    v.GetInt("MAIL_WORKERS"),
			QueueSize:  v.GetInt("MAIL_QUEUE_SIZE"),
			MaxRetries: v.GetInt("MAIL_MAX_RETRIES"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		},
		Verification: VerificationConfig{
			CodeTTL: time.Duration(v.GetInt("VERIFICATION_TTL_MINUTES")) * time.Minute,
		},
		Sweep: SweepConfig{
			Schedule:  v.GetString("SWEEP_SCHEDULE"),
			Retention: time.Duration(v.GetInt("UNVERIFIED_RETENTION_HOURS")) * time.Hour,
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
