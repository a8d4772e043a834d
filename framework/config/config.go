package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig
	Resolver ResolverConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type ResolverConfig struct {
	Catalog     string // path of the YAML catalog
	LogLevel    string // debug | info | warn | error
	LoadTimeout time.Duration
}

type AdminConfig struct {
	Enabled         bool
	Addr            string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "resolverd"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
		},
		Resolver: ResolverConfig{
			Catalog:     env("RESOLVER_CATALOG", "catalog.yaml"),
			LogLevel:    env("RESOLVER_LOG_LEVEL", "info"),
			LoadTimeout: envDuration("RESOLVER_LOAD_TIMEOUT", 30*time.Second),
		},
		Admin: AdminConfig{
			Enabled:         envBool("ADMIN_ENABLED", true),
			Addr:            env("ADMIN_ADDR", "127.0.0.1:8070"),
			ShutdownTimeout: envDuration("ADMIN_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
