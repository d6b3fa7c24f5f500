package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Environment != "local" || cfg.IsProd() {
		t.Errorf("expected local environment, got %q", cfg.Environment)
	}
	if cfg.Cookies.AgeTTL != 400*24*time.Hour {
		t.Errorf("expected 400 day age ttl, got %s", cfg.Cookies.AgeTTL)
	}
	if cfg.CMS.CacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cms ttl, got %s", cfg.CMS.CacheTTL)
	}
	if strings.Join(cfg.Languages, ",") != "en,fr" || cfg.DefaultLanguage != "en" {
		t.Errorf("unexpected languages %v default=%q", cfg.Languages, cfg.DefaultLanguage)
	}
	if cfg.Location().String() != "America/Toronto" {
		t.Errorf("expected Toronto time zone, got %s", cfg.Location())
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvMap(map[string]string{
		"LCP_WEB_PORT":                        "9090",
		"LCP_WEB_ENV":                         " Staging ",
		"LCP_WEB_DEV":                         "true",
		"LCP_WEB_SITE_URL":                    "https://example.test/",
		"LCP_WEB_LANGUAGES":                   "EN, fr",
		"LCP_WEB_COOKIE_AGE_TTL":              "720h",
		"LCP_WEB_CMS_BASE_URL":                "https://cms.example.test",
		"LCP_WEB_ANALYTICS_GA_MEASUREMENT_ID": "G-TEST",
		"LCP_WEB_LOG_LEVEL":                   "debug",
		"LCP_WEB_OTEL_ENDPOINT":               "http://collector:4318",
		"LCP_WEB_OTEL_SAMPLE_RATIO":           "0.25",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || !cfg.Dev || cfg.Environment != "staging" {
		t.Errorf("unexpected core settings %+v", cfg)
	}
	if cfg.SiteURL != "https://example.test" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.SiteURL)
	}
	if strings.Join(cfg.Languages, ",") != "en,fr" {
		t.Errorf("expected normalised languages, got %v", cfg.Languages)
	}
	if cfg.Cookies.AgeTTL != 720*time.Hour {
		t.Errorf("unexpected age ttl %s", cfg.Cookies.AgeTTL)
	}
	if cfg.Analytics.GA4MeasurementID != "G-TEST" {
		t.Errorf("unexpected analytics %+v", cfg.Analytics)
	}
	if cfg.Tracing.Endpoint != "http://collector:4318" || cfg.Tracing.SampleRatio != 0.25 {
		t.Errorf("unexpected tracing %+v", cfg.Tracing)
	}
}

func TestLoadFallsBackToPlatformPort(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvMap(map[string]string{"PORT": "7000"}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("expected PORT fallback, got %q", cfg.Port)
	}

	cfg, err = Load(WithoutSystemEnv(), WithEnvMap(map[string]string{"PORT": "7000", "LCP_WEB_PORT": "7001"}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7001" {
		t.Errorf("expected prefixed port to win, got %q", cfg.Port)
	}
}

func TestLoadProdRequiresHashKey(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvMap(map[string]string{"LCP_WEB_ENV": "prod"}))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := verr.Fields(); len(got) != 1 || got[0] != "COOKIE_HASH_KEY" {
		t.Errorf("unexpected fields %v", got)
	}

	_, err = Load(WithoutSystemEnv(), WithEnvMap(map[string]string{
		"LCP_WEB_ENV":             "prod",
		"LCP_WEB_COOKIE_HASH_KEY": strings.Repeat("k", 32),
	}))
	if err != nil {
		t.Fatalf("expected prod config with key to load, got %v", err)
	}
}

func TestLoadCollectsInvalidFields(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvMap(map[string]string{
		"LCP_WEB_PORT":             "http",
		"LCP_WEB_SITE_URL":         "not a url",
		"LCP_WEB_COOKIE_BLOCK_KEY": "short",
		"LCP_WEB_LOG_LEVEL":        "verbose",
		"LCP_WEB_DEFAULT_LANGUAGE": "de",
		"LCP_WEB_OTEL_ENDPOINT":    "collector",
		"LCP_WEB_TIMEZONE":         "Mars/Olympus",
	}))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"PORT", "SITE_URL", "COOKIE_BLOCK_KEY", "TIMEZONE", "LOG_LEVEL", "DEFAULT_LANGUAGE", "OTEL_ENDPOINT"}
	got := verr.Fields()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected fields %v, got %v", want, got)
	}
	if !strings.Contains(verr.Error(), "SITE_URL") {
		t.Errorf("error message should list fields, got %q", verr.Error())
	}
}

func TestCookieKeys(t *testing.T) {
	cfg := Config{Environment: "local"}
	hash, block, ephemeral, err := cfg.CookieKeys()
	if err != nil {
		t.Fatalf("CookieKeys: %v", err)
	}
	if !ephemeral || len(hash) != 32 || block != nil {
		t.Errorf("expected ephemeral 32 byte key, got ephemeral=%v len=%d", ephemeral, len(hash))
	}

	cfg = Config{Environment: "prod", Cookies: CookieConfig{HashKey: "configured", BlockKey: strings.Repeat("b", 16)}}
	hash, block, ephemeral, err = cfg.CookieKeys()
	if err != nil || ephemeral || string(hash) != "configured" || len(block) != 16 {
		t.Errorf("unexpected keys hash=%q block=%d ephemeral=%v err=%v", hash, len(block), ephemeral, err)
	}

	cfg = Config{Environment: "prod"}
	if _, _, _, err := cfg.CookieKeys(); err == nil {
		t.Errorf("prod without hash key must fail")
	}
}
