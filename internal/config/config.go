// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/jonathan/resume-builder/internal/compile"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// PlaceholderPolicy decides how a layout that degraded to the placeholder document is
// reported to callers.
type PlaceholderPolicy string

const (
	// PolicyAccept returns the placeholder artifact and flags the outcome.
	PolicyAccept PlaceholderPolicy = "accept"
	// PolicyFail reports the layout as failed instead of returning the placeholder.
	PolicyFail PlaceholderPolicy = "fail"
)

// MaxConfigSize limits config file input.
const MaxConfigSize = 1 << 20

var ErrConfigTooLarge = errors.New("config file exceeds maximum size")

// Config is the full application configuration. It can be loaded from a YAML or JSON
// file; every field is optional and falls back to Default.
type Config struct {
	// Services are the compilation backends, tried in order.
	Services []ServiceEntry `yaml:"services" validate:"dive"`
	// Layouts selects the default layouts by name or number.
	Layouts []string `yaml:"layouts"`

	PlaceholderPolicy PlaceholderPolicy `yaml:"placeholder_policy" validate:"oneof=accept fail"`

	Server ServerConfig `yaml:"server"`
	Gemini GeminiConfig `yaml:"gemini"`
	JWT    JWTConfig    `yaml:"jwt"`

	// DatabaseURL enables the run ledger when set.
	DatabaseURL string `yaml:"database_url"`
}

// ServiceEntry is the file form of compile.ServiceConfig. Durations are Go duration
// strings ("30s", "1m").
type ServiceEntry struct {
	Name         string `yaml:"name" validate:"required"`
	Kind         string `yaml:"kind" validate:"required,oneof=query archive json poll"`
	URL          string `yaml:"url" validate:"required,url"`
	MaxLength    int    `yaml:"max_length" validate:"gte=0"`
	Timeout      string `yaml:"timeout"`
	PollInterval string `yaml:"poll_interval"`
	PollAttempts int    `yaml:"poll_attempts" validate:"gte=0"`
	TempRoot     string `yaml:"temp_root"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int  `yaml:"port" validate:"gte=0,lte=65535"`
	RequireAuth bool `yaml:"require_auth"`
	// MaxUploadMB caps multipart uploads.
	MaxUploadMB int `yaml:"max_upload_mb" validate:"gte=0"`
}

// GeminiConfig holds extraction settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Default returns the built-in configuration: the three public backends and every
// primary layout.
func Default() *Config {
	defaults := compile.DefaultServiceConfigs()
	services := make([]ServiceEntry, len(defaults))
	for i, s := range defaults {
		services[i] = ServiceEntry{
			Name:      s.Name,
			Kind:      string(s.Kind),
			URL:       s.URL,
			MaxLength: s.MaxLength,
			Timeout:   s.Timeout.String(),
		}
	}

	layouts := make([]string, len(rendering.PrimaryLayouts))
	for i, l := range rendering.PrimaryLayouts {
		layouts[i] = string(l)
	}

	return &Config{
		Services:          services,
		Layouts:           layouts,
		PlaceholderPolicy: PolicyAccept,
		Server:            ServerConfig{Port: 8080, MaxUploadMB: 16},
		Gemini:            GeminiConfig{Model: "gemini-2.5-flash"},
		JWT:               JWTConfig{ExpirationHours: 24},
	}
}

// Load reads the file at path over Default, then applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// Resolve path relative to current directory if not absolute
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML (or JSON, which is valid YAML) into cfg, rejecting unknown keys.
// Fields absent from data keep their current values.
func Parse(data []byte, cfg *Config) error {
	if len(data) > MaxConfigSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), MaxConfigSize)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
		}
		c.JWT.ExpirationHours = hours
	}
	if v := getenv("RESUME_PLACEHOLDER_POLICY"); v != "" {
		c.PlaceholderPolicy = PlaceholderPolicy(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

var validate = validator.New()

// Validate checks struct constraints, durations and layout identifiers.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("config error: invalid fields: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := c.ServiceConfigs(); err != nil {
		return err
	}
	if _, err := rendering.ParseLayouts(c.Layouts); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.JWT.Secret != "" {
		if err := c.JWT.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ServiceConfigs converts the service entries for compile.NewServices.
func (c *Config) ServiceConfigs() ([]compile.ServiceConfig, error) {
	out := make([]compile.ServiceConfig, len(c.Services))
	for i, s := range c.Services {
		timeout, err := parseDuration(s.Timeout)
		if err != nil {
			return nil, fmt.Errorf("config error: services[%d].timeout: %w", i, err)
		}
		if timeout == 0 {
			timeout = compile.DefaultTimeout(compile.Kind(s.Kind))
		}
		interval, err := parseDuration(s.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("config error: services[%d].poll_interval: %w", i, err)
		}
		out[i] = compile.ServiceConfig{
			Name:         s.Name,
			Kind:         compile.Kind(s.Kind),
			URL:          s.URL,
			MaxLength:    s.MaxLength,
			Timeout:      timeout,
			PollInterval: interval,
			PollAttempts: s.PollAttempts,
			TempRoot:     s.TempRoot,
		}
	}
	return out, nil
}

// DefaultLayouts resolves the configured layout list.
func (c *Config) DefaultLayouts() ([]rendering.Layout, error) {
	return rendering.ParseLayouts(c.Layouts)
}

// MaxUploadBytes is the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	if c.Server.MaxUploadMB <= 0 {
		return 16 << 20
	}
	return int64(c.Server.MaxUploadMB) << 20
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be non-negative, got %s", s)
	}
	return d, nil
}
