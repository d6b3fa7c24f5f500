// Package config loads runtime configuration for the web server.
package config

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	// Distroless images ship without a zoneinfo database.
	_ "time/tzdata"
)

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "LCP_WEB_"

const (
	defaultPort   = "8080"
	minHashKeyLen = 32
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Port         string `env:"PORT"`
	Environment  string `env:"ENV" envDefault:"local"`
	Dev          bool   `env:"DEV"`
	SiteURL      string `env:"SITE_URL" envDefault:"https://ladrillocristalpuro.ca"`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"templates"`
	PublicDir    string `env:"PUBLIC_DIR" envDefault:"public"`
	LocalesDir   string `env:"LOCALES_DIR" envDefault:"locales"`
	ContentDir   string `env:"CONTENT_DIR" envDefault:"content"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	// Timezone is the visitors' calendar, used for the age rule.
	Timezone     string `env:"TIMEZONE" envDefault:"America/Toronto"`

	Languages       []string `env:"LANGUAGES" envDefault:"en,fr" envSeparator:","`
	DefaultLanguage string   `env:"DEFAULT_LANGUAGE" envDefault:"en"`

	Cookies   CookieConfig    `envPrefix:"COOKIE_"`
	CMS       CMSConfig       `envPrefix:"CMS_"`
	Analytics AnalyticsConfig `envPrefix:"ANALYTICS_"`
	Tracing   TracingConfig   `envPrefix:"OTEL_"`
}

// CookieConfig controls the signed gate cookies.
type CookieConfig struct {
	HashKey  string        `env:"HASH_KEY"`
	BlockKey string        `env:"BLOCK_KEY"`
	Domain   string        `env:"DOMAIN"`
	AgeTTL   time.Duration `env:"AGE_TTL" envDefault:"9600h"`
}

// CMSConfig points at an optional remote content service.
type CMSConfig struct {
	BaseURL  string        `env:"BASE_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// AnalyticsConfig holds client instrumentation identifiers surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string `env:"GA_MEASUREMENT_ID"`
	GTMContainerID   string `env:"GTM_CONTAINER_ID"`
	Debug            bool   `env:"DEBUG"`
}

// TracingConfig enables span export when an OTLP endpoint is set.
type TracingConfig struct {
	Endpoint    string  `env:"ENDPOINT"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load parses LCP_WEB_* variables, falls back to Cloud Run's PORT and validates the result.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	values := map[string]string{}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
				values[k] = v
			}
		}
	}
	for k, v := range options.envMap {
		values[k] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: values}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Port == "" {
		cfg.Port = values["PORT"]
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	for i, l := range cfg.Languages {
		cfg.Languages[i] = strings.ToLower(strings.TrimSpace(l))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var fields []string
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		fields = append(fields, "PORT")
	}
	if u, err := url.Parse(c.SiteURL); err != nil || u.Scheme == "" || u.Host == "" {
		fields = append(fields, "SITE_URL")
	}
	if c.IsProd() && len(c.Cookies.HashKey) < minHashKeyLen {
		fields = append(fields, "COOKIE_HASH_KEY")
	}
	switch len(c.Cookies.BlockKey) {
	case 0, 16, 24, 32:
	default:
		fields = append(fields, "COOKIE_BLOCK_KEY")
	}
	if c.Cookies.AgeTTL <= 0 {
		fields = append(fields, "COOKIE_AGE_TTL")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		fields = append(fields, "TIMEZONE")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		fields = append(fields, "LOG_LEVEL")
	}
	if !contains(c.Languages, c.DefaultLanguage) {
		fields = append(fields, "DEFAULT_LANGUAGE")
	}
	if c.CMS.BaseURL != "" {
		if u, err := url.Parse(c.CMS.BaseURL); err != nil || u.Scheme == "" {
			fields = append(fields, "CMS_BASE_URL")
		}
	}
	if c.Tracing.Endpoint != "" {
		if u, err := url.Parse(c.Tracing.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			fields = append(fields, "OTEL_ENDPOINT")
		}
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		fields = append(fields, "OTEL_SAMPLE_RATIO")
	}
	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

// IsProd reports whether the server runs in production.
func (c Config) IsProd() bool { return c.Environment == "prod" }

// Location returns the site time zone, or UTC when it cannot be loaded.
func (c Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil && c.Timezone != "" {
		return loc
	}
	return time.UTC
}

// Addr is the listen address derived from the port.
func (c Config) Addr() string { return ":" + c.Port }

// CookieKeys returns the signing and encryption keys. Outside production a
// missing hash key is replaced with a process-ephemeral one and ephemeral is true.
func (c Config) CookieKeys() (hash, block []byte, ephemeral bool, err error) {
	if c.Cookies.BlockKey != "" {
		block = []byte(c.Cookies.BlockKey)
	}
	if c.Cookies.HashKey != "" {
		return []byte(c.Cookies.HashKey), block, false, nil
	}
	if c.IsProd() {
		return nil, nil, false, &ValidationError{fields: []string{"COOKIE_HASH_KEY"}}
	}
	hash = make([]byte, minHashKeyLen)
	if _, err := rand.Read(hash); err != nil {
		return nil, nil, false, fmt.Errorf("generate cookie key: %w", err)
	}
	return hash, block, true, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
