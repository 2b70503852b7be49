package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the gateway
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Admin credential configuration
	Admin AdminConfig

	// Login rate limit configuration
	RateLimit RateLimitConfig

	// Redis configuration (optional shared rate-limit store)
	Redis RedisConfig

	// Route classification tables for the edge guard
	Routes RouteTables

	// Logging configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string // listen port, e.g. ":8080"
}

// AdminConfig holds the server-held admin secrets.
//
// Passcode is required for the admin login endpoint to ever succeed
// (verification fails closed without it). APISecret is optional; when set,
// issued tokens are stable across restarts and the x-admin-token header is
// honored.
type AdminConfig struct {
	Passcode  string
	APISecret string
	Emails    []string // admin email allow-list, comma-separated in env
}

// PrimaryEmail returns the first configured admin email, or "" if none.
func (a AdminConfig) PrimaryEmail() string {
	if len(a.Emails) > 0 {
		return a.Emails[0]
	}
	return ""
}

// RateLimitConfig holds the login attempt budget
type RateLimitConfig struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// RedisConfig holds Redis configuration. An empty Address selects the
// in-process rate-limit store.
type RedisConfig struct {
	Address string
}

// RouteTables are the three route classes consulted by the edge guard,
// plus the excluded prefixes the guard never sees. All other paths are
// implicitly public.
type RouteTables struct {
	AdminOnly         []string `yaml:"admin_only"`
	AuthenticatedOnly []string `yaml:"authenticated_only"`
	AuthPages         []string `yaml:"auth_pages"`
	Excluded          []string `yaml:"excluded"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	var adminEmails []string
	for _, e := range strings.Split(os.Getenv("ADMIN_EMAILS"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			adminEmails = append(adminEmails, e)
		}
	}

	maxAttempts := 5
	if v := os.Getenv("LOGIN_RATE_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid LOGIN_RATE_MAX %q", v)
		}
		maxAttempts = n
	}

	window := 15 * time.Minute
	if v := os.Getenv("LOGIN_RATE_WINDOW_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid LOGIN_RATE_WINDOW_MS %q", v)
		}
		window = time.Duration(ms) * time.Millisecond
	}

	routes := DefaultRoutes()
	if path := os.Getenv("ROUTES_FILE"); path != "" {
		loaded, err := LoadRoutes(path)
		if err != nil {
			return nil, err
		}
		routes = loaded
	}

	// Logging configuration - defaults suitable for production
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Server: ServerConfig{
			Port: port,
		},
		Admin: AdminConfig{
			Passcode:  os.Getenv("ADMIN_PASSCODE"),
			APISecret: os.Getenv("ADMIN_API_SECRET"),
			Emails:    adminEmails,
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts: maxAttempts,
			LoginWindow:      window,
		},
		Redis: RedisConfig{
			Address: os.Getenv("REDIS_ADDRESS"),
		},
		Routes: routes,
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

// DefaultRoutes returns the compiled-in route classification tables, used
// when no ROUTES_FILE is configured.
func DefaultRoutes() RouteTables {
	return RouteTables{
		AdminOnly:         []string{"/admin"},
		AuthenticatedOnly: []string{"/account", "/orders", "/health-log"},
		AuthPages:         []string{"/login", "/register"},
		Excluded:          []string{"/assets", "/static", "/_internal", "/favicon.ico"},
	}
}

// LoadRoutes reads route classification tables from a YAML file. Lists
// omitted in the file fall back to the defaults, so a deployment can
// override a single class without restating the rest.
func LoadRoutes(path string) (RouteTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RouteTables{}, fmt.Errorf("read routes file: %w", err)
	}

	routes := RouteTables{}
	if err := yaml.Unmarshal(data, &routes); err != nil {
		return RouteTables{}, fmt.Errorf("parse routes file: %w", err)
	}

	defaults := DefaultRoutes()
	if routes.AdminOnly == nil {
		routes.AdminOnly = defaults.AdminOnly
	}
	if routes.AuthenticatedOnly == nil {
		routes.AuthenticatedOnly = defaults.AuthenticatedOnly
	}
	if routes.AuthPages == nil {
		routes.AuthPages = defaults.AuthPages
	}
	if routes.Excluded == nil {
		routes.Excluded = defaults.Excluded
	}

	return routes, nil
}
