package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// knownWeakSecrets contains default/example secrets that must be rejected
// outside of debug mode.
var knownWeakSecrets = []string{
	"your-super-secret-key-change-in-production",
	"change-me",
	"secret",
}

// Config holds the application configuration, loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	ServerHost string `env:"HOST" envDefault:"0.0.0.0"`
	ServerPort int    `env:"PORT" envDefault:"8000"`
	Debug      bool   `env:"DEBUG" envDefault:"false"`

	// SecretKey signs every issued token. The default exists so the
	// server can boot in development; Load rejects it unless Debug is set.
	SecretKey string `env:"SECRET_KEY" envDefault:"your-super-secret-key-change-in-production"`
	Algorithm string `env:"ALGORITHM" envDefault:"HS256"`

	AccessTokenExpireMinutes int `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	RefreshTokenExpireDays   int `env:"REFRESH_TOKEN_EXPIRE_DAYS" envDefault:"7"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`

	// DatabaseURL, when set, takes precedence over the individual
	// DB_* settings below.
	DatabaseURL string `env:"DATABASE_URL"`

	Database DatabaseConfig `envPrefix:"DB_"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"authserver"`
	Password string `env:"PASSWORD" envDefault:"password"`
	DBName   string `env:"NAME" envDefault:"authserver_db"`
	UseSSL   bool   `env:"USE_SSL" envDefault:"false"`
}

// Load parses environment variables into a Config. In dev mode
// (ENV=dev) a .env file is loaded first if present.
func Load() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Algorithm != "HS256" {
		return Config{}, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTokenExpireMinutes < 1 || cfg.RefreshTokenExpireDays < 1 {
		return Config{}, fmt.Errorf("token lifetimes must be positive")
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SecretKey == weak {
			if !cfg.Debug {
				return Config{}, fmt.Errorf("SECRET_KEY is a known default value and must be overridden")
			}
			slog.Warn("SECRET_KEY is a known default value; do not use it outside development")
			break
		}
	}

	return cfg, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// ServerAddr returns the listen address in host:port form.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// PostgresURL returns the connection string for the configured database.
func (c Config) PostgresURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	sslmode := "disable"
	if c.Database.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Path:   c.Database.DBName,
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}
