// Package config loads configuration for both binaries (the data service and
// the web front end) from environment variables. No other package reads env
// vars directly. Defaults are tuned for local development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated once at startup and
// passed to other packages explicitly.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the data service listen port (default: 8080).
	Port int

	// BaseURL is the public URL of the data service. Media URLs are built
	// from it unless Upload.PublicBaseURL overrides it.
	BaseURL string

	// MigrationsPath is the directory holding the SQL migrations.
	MigrationsPath string

	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Upload   UploadConfig
	Chat     ChatConfig
	Web      WebConfig
}

// DatabaseConfig holds MariaDB connection parameters. If DATABASE_URL is set
// it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address; 3306 is appended when no port is given.
	Host     string
	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string, built with the
// driver's FormatDSN so special characters in passwords survive.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if host doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters. Only the web front end uses
// Redis (for the admin credential store).
type RedisConfig struct {
	URL string
}

// AdminConfig holds the single shared admin credential.
type AdminConfig struct {
	// Token is the plaintext edit token. Hashed with bcrypt at startup.
	Token string

	// TokenHash is a bcrypt hash of the edit token. Preferred over Token in
	// production so the plaintext never sits in the environment.
	TokenHash string
}

// UploadConfig holds image upload settings.
type UploadConfig struct {
	// MaxSize is the maximum decoded image size in bytes (default: 2 MiB).
	MaxSize int64

	// MediaPath is the root directory for stored images.
	MediaPath string

	// PublicBaseURL prefixes the URLs returned by the upload endpoint.
	PublicBaseURL string
}

// ChatConfig configures the OpenAI-compatible backend of /api/chat.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled reports whether the chat endpoint has a backend to call.
func (c ChatConfig) Enabled() bool {
	return c.APIKey != ""
}

// WebConfig holds settings for the web front end binary.
type WebConfig struct {
	// Port is the front end listen port (default: 3000).
	Port int

	// DataServiceURL is where the front end reaches the data service.
	DataServiceURL string

	// ChatURL is the chat endpoint the viewer posts to.
	ChatURL string

	// AdminPath is the exact path that serves the admin console.
	AdminPath string

	// ClientTimeout bounds every call to the data service.
	ClientTimeout time.Duration
}

// Load reads configuration from environment variables with defaults.
// Returns an error if a required production setting is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnvInt("PORT", 8080),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "db/migrations"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "atlas"),
			Password:        getEnv("DB_PASSWORD", "atlas"),
			Name:            getEnv("DB_NAME", "atlas"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Admin: AdminConfig{
			Token:     getEnv("ADMIN_TOKEN", ""),
			TokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
		},

		Upload: UploadConfig{
			MaxSize:       getEnvInt64("MAX_UPLOAD_SIZE", 2*1024*1024),
			MediaPath:     getEnv("MEDIA_PATH", "./media"),
			PublicBaseURL: getEnv("MEDIA_BASE_URL", ""),
		},

		Chat: ChatConfig{
			APIKey:  getEnv("CHAT_API_KEY", ""),
			BaseURL: getEnv("CHAT_BASE_URL", ""),
			Model:   getEnv("CHAT_MODEL", "gpt-4o-mini"),
		},

		Web: WebConfig{
			Port:           getEnvInt("WEB_PORT", 3000),
			DataServiceURL: getEnv("DATA_SERVICE_URL", "http://localhost:8080"),
			ChatURL:        getEnv("CHAT_URL", ""),
			AdminPath:      getEnv("ADMIN_PATH", "/admin"),
			ClientTimeout:  getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		},
	}

	if cfg.Upload.PublicBaseURL == "" {
		cfg.Upload.PublicBaseURL = cfg.BaseURL
	}
	cfg.Upload.PublicBaseURL = strings.TrimRight(cfg.Upload.PublicBaseURL, "/")
	cfg.Web.DataServiceURL = strings.TrimRight(cfg.Web.DataServiceURL, "/")
	if cfg.Web.ChatURL == "" {
		cfg.Web.ChatURL = cfg.Web.DataServiceURL + "/api/chat"
	}
	if !strings.HasPrefix(cfg.Web.AdminPath, "/") {
		return nil, fmt.Errorf("ADMIN_PATH must start with /, got %q", cfg.Web.AdminPath)
	}

	if !cfg.IsDevelopment() && cfg.Admin.Token == "" && cfg.Admin.TokenHash == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN or ADMIN_TOKEN_HASH is required in production")
	}

	// Dev-only default so a local stack works without .env.
	if cfg.Admin.Token == "" && cfg.Admin.TokenHash == "" {
		cfg.Admin.Token = "dev-edit-token"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "30s").
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
