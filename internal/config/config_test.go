package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/compile"
	"github.com/jonathan/resume-builder/internal/rendering"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func noEnv(string) string { return "" }

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PolicyAccept, cfg.PlaceholderPolicy)

	services, err := cfg.ServiceConfigs()
	require.NoError(t, err)
	assert.Equal(t, compile.DefaultServiceConfigs(), services)

	layouts, err := cfg.DefaultLayouts()
	require.NoError(t, err)
	assert.Equal(t, rendering.PrimaryLayouts, layouts)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
placeholder_policy: fail
layouts: ["2", compact]
services:
  - name: local
    kind: poll
    url: http://localhost:9000/jobs
    timeout: 10s
    poll_interval: 500ms
    poll_attempts: 3
server:
  port: 9090
`)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("RESUME_PLACEHOLDER_POLICY", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, PolicyFail, cfg.PlaceholderPolicy)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model, "unset sections keep defaults")

	layouts, err := cfg.DefaultLayouts()
	require.NoError(t, err)
	assert.Equal(t, []rendering.Layout{rendering.Modern, rendering.Compact}, layouts)

	services, err := cfg.ServiceConfigs()
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, compile.ServiceConfig{
		Name:         "local",
		Kind:         compile.KindPoll,
		URL:          "http://localhost:9000/jobs",
		Timeout:      10 * time.Second,
		PollInterval: 500 * time.Millisecond,
		PollAttempts: 3,
	}, services[0])
}

func TestServiceConfigs_MissingTimeoutTakesKindDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Parse([]byte(`
services:
  - name: archive
    kind: archive
    url: http://localhost:9000/data
  - name: poller
    kind: poll
    url: http://localhost:9000/jobs
`), cfg))

	services, err := cfg.ServiceConfigs()
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, 60*time.Second, services[0].Timeout)
	assert.Equal(t, compile.DefaultTimeout(compile.KindPoll), services[1].Timeout)
	for _, s := range services {
		assert.Positive(t, s.Timeout, s.Name)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"placeholder_policy": "accept", "server": {"port": 3000}}`)
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Len(t, cfg.Services, 3)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	err := Parse([]byte("placeholder_policy: accept\nverbose: true\n"), Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestParse_TooLarge(t *testing.T) {
	err := Parse(make([]byte, MaxConfigSize+1), Default())
	assert.ErrorIs(t, err, ErrConfigTooLarge)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":            "key",
		"DATABASE_URL":              "postgres://localhost/resume",
		"JWT_SECRET":                "secret",
		"JWT_EXPIRATION_HOURS":      "12",
		"RESUME_PLACEHOLDER_POLICY": " FAIL ",
		"PORT":                      "7000",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "key", cfg.Gemini.APIKey)
	assert.Equal(t, "postgres://localhost/resume", cfg.DatabaseURL)
	assert.Equal(t, "secret", cfg.JWT.Secret)
	assert.Equal(t, 12, cfg.JWT.ExpirationHours)
	assert.Equal(t, PolicyFail, cfg.PlaceholderPolicy)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ApplyEnv(func(k string) string {
		if k == "PORT" {
			return "eighty"
		}
		return ""
	}))
	assert.Error(t, cfg.ApplyEnv(func(k string) string {
		if k == "JWT_EXPIRATION_HOURS" {
			return "soon"
		}
		return ""
	}))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown policy", func(c *Config) { c.PlaceholderPolicy = "ignore" }, "PlaceholderPolicy"},
		{"missing service url", func(c *Config) { c.Services[0].URL = "" }, "URL"},
		{"unknown kind", func(c *Config) { c.Services[1].Kind = "ftp" }, "Kind"},
		{"negative max length", func(c *Config) { c.Services[0].MaxLength = -1 }, "MaxLength"},
		{"bad timeout", func(c *Config) { c.Services[2].Timeout = "forever" }, "services[2].timeout"},
		{"negative timeout", func(c *Config) { c.Services[2].Timeout = "-1s" }, "non-negative"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "Port"},
		{"unknown layout", func(c *Config) { c.Layouts = []string{"fancy"} }, "fancy"},
		{"short jwt expiry", func(c *Config) { c.JWT = JWTConfig{Secret: "s", ExpirationHours: 0} }, "JWT_EXPIRATION_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.ApplyEnv(noEnv))
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
	cfg.Server.MaxUploadMB = 2
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes())
	cfg.Server.MaxUploadMB = 0
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
}
