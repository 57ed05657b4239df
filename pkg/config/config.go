package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                    string
	Env                     string
	DBDriver                string
	PostgresConnStr         string
	SQLitePath              string
	JWTSecret               string
	JWTExpiresIn            time.Duration
	FirebaseCredentialsPath string
	RedisAddr               string
	CountCacheTTL           time.Duration
	MetricsPort             string
	SentryDSN               string
	CORSOrigins             []string
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from a .env file (when present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("POSTGRES_CONN_STR", "")
	v.SetDefault("SQLITE_PATH", "tweetline.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRES_IN", "72h")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("COUNT_CACHE_TTL", "5m")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("CORS_ORIGINS", "*")

	cfg := &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		DBDriver:                strings.ToLower(v.GetString("DB_DRIVER")),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		SQLitePath:              v.GetString("SQLITE_PATH"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		JWTExpiresIn:            v.GetDuration("JWT_EXPIRES_IN"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		CountCacheTTL:           v.GetDuration("COUNT_CACHE_TTL"),
		MetricsPort:             v.GetString("METRICS_PORT"),
		SentryDSN:               v.GetString("SENTRY_DSN"),
		CORSOrigins:             splitList(v.GetString("CORS_ORIGINS")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET environment variable not set")
		}
		c.JWTSecret = "supersecretjwtkey"
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be a positive duration")
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresConnStr == "" {
			return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH environment variable not set")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
