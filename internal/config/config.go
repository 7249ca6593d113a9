package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every setting the API and seed commands read from the environment.
type Config struct {
	Port           string        `env:"PORT" envDefault:"3000"`
	AppName        string        `env:"APP_NAME" envDefault:"Marketplace Back-Office v1.0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	Database Database

	JWTSecret string        `env:"JWT_SECRET" envDefault:"your-super-secret-key-change-in-production"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text | json

	NotifyBuffer int `env:"NOTIFY_BUFFER" envDefault:"256"`
}

// Database selects and addresses the backing store.
type Database struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"` // postgres | sqlite
	URL        string `env:"DATABASE_URL"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME" envDefault:"marketplace"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"marketplace.db"`
	Migrations string `env:"MIGRATIONS" envDefault:"auto"` // auto | sql
}

// Load reads .env (when present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on system env")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.NotifyBuffer <= 0 {
		return nil, fmt.Errorf("NOTIFY_BUFFER must be positive, got %d", cfg.NotifyBuffer)
	}

	return &cfg, nil
}

// PostgresDSN returns DATABASE_URL or builds a key/value DSN from the DB_* parts.
func (d Database) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

// SetupLogging configures the process-wide logrus logger.
func (c *Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
