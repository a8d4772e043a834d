package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-resolver/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// unsetEnv removes key for the duration of the test so godotenv may fill it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	// No env set → verify all defaults
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "resolverd"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Debug", cfg.App.Debug, false},
		{"Resolver.Catalog", cfg.Resolver.Catalog, "catalog.yaml"},
		{"Resolver.LogLevel", cfg.Resolver.LogLevel, "info"},
		{"Resolver.LoadTimeout", cfg.Resolver.LoadTimeout, 30 * time.Second},
		{"Admin.Enabled", cfg.Admin.Enabled, true},
		{"Admin.Addr", cfg.Admin.Addr, "127.0.0.1:8070"},
		{"Admin.ShutdownTimeout", cfg.Admin.ShutdownTimeout, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setEnv(t, "APP_NAME", "MyResolver")
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "RESOLVER_LOG_LEVEL", "debug")
	setEnv(t, "ADMIN_ENABLED", "false")

	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "MyResolver", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "debug", cfg.Resolver.LogLevel)
	assert.False(t, cfg.Admin.Enabled)
}

func TestLoad_EnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set
	unsetEnv(t, "APP_NAME")
	unsetEnv(t, "RESOLVER_CATALOG")
	unsetEnv(t, "ADMIN_SHUTDOWN_TIMEOUT")

	cfg := config.Load("testdata/custom.env")

	assert.Equal(t, "FromFile", cfg.App.Name)
	assert.Equal(t, "configs/catalog.yaml", cfg.Resolver.Catalog)
	assert.Equal(t, 12*time.Second, cfg.Admin.ShutdownTimeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	setEnv(t, "APP_DEBUG", "maybe")
	setEnv(t, "RESOLVER_LOAD_TIMEOUT", "soon")

	cfg := config.Load("testdata/empty.env")

	assert.False(t, cfg.App.Debug)
	assert.Equal(t, 30*time.Second, cfg.Resolver.LoadTimeout)
}

// ── Get helpers ──────────────────────────────────────────────────────────────

func TestGet(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "value")
	assert.Equal(t, "value", config.Get("CUSTOM_KEY", "default"))
	assert.Equal(t, "default", config.Get("MISSING_KEY_XYZ", "default"))
}
