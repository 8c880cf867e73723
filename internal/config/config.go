package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	LogLevel   string
	ListenAddr string

	DBType      string // memory, sqlite, postgres
	DBDSN       string
	SQLitePath  string
	DataFile    string // snapshot file for the memory backend
	AuthMode    string // local, remote
	DevToken    string
	JWTSecret   string
	VerifyURL   string
	TimezoneStr string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:         getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			ListenAddr:  getEnv("LISTEN_ADDR", ":8088"),
			DBType:      getEnv("STORAGE_BACKEND", "memory"),
			DBDSN:       getEnv("POSTGRES_DSN", ""),
			SQLitePath:  getEnv("SQLITE_PATH", "data/dopamenu.db"),
			DataFile:    getEnv("DATA_FILE", "data/dopamenu.json"),
			AuthMode:    getEnv("AUTH_MODE", "local"),
			DevToken:    getEnv("DEV_TOKEN", "MOCK-TOKEN"),
			JWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
			VerifyURL:   getEnv("AUTH_VERIFY_URL", ""),
			TimezoneStr: getEnv("TIMEZONE", ""),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "memory":
		if c.DataFile == "" {
			return errors.New("DATA_FILE is required when STORAGE_BACKEND=memory")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: memory, sqlite, postgres")
	}
	if c.AuthMode != "local" && c.AuthMode != "remote" {
		return errors.New("AUTH_MODE must be one of: local, remote")
	}
	if c.AuthMode == "remote" && c.JWTSecret == "" && c.VerifyURL == "" {
		return errors.New("AUTH_MODE=remote requires AUTH_JWT_SECRET or AUTH_VERIFY_URL")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if _, err := c.Timezone(); err != nil {
		return errors.New("TIMEZONE is not a valid IANA location: " + c.TimezoneStr)
	}
	return nil
}

// Timezone resolves the calendar-day bucketing location. Empty means
// server-local; whether that matches the user's wall clock is a deployment
// decision, which is why it is configuration and not code.
func (c *Config) Timezone() (*time.Location, error) {
	if c.TimezoneStr == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimezoneStr)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
