package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server defaults.
const (
	DefaultPort          = 8080
	DefaultStylesheetURL = "https://cdn.tailwindcss.com"
	DefaultCookieName    = "token"
)

// ServerConfig holds the server settings read from the environment.
type ServerConfig struct {
	Port int
	// DatabaseURL is optional. Without it the resume REST endpoints are not mounted
	// and editor sessions cannot be saved.
	DatabaseURL string
	JWT         *JWTConfig
	// PreviewURL is the page snapshotted by GET /api/generate-pdf.
	PreviewURL         string
	ChromePath         string
	StylesheetURL      string
	CookieName         string
	MarkerTimeout      time.Duration
	NetworkIdleTimeout time.Duration
	RenderTimeout      time.Duration
	Verbose            bool
}

// LoadServerConfig reads the server configuration from environment variables:
// PORT, DATABASE_URL, JWT_SECRET, PREVIEW_URL, CHROME_PATH, STYLESHEET_URL,
// AUTH_COOKIE_NAME, MARKER_TIMEOUT, NETWORK_IDLE_TIMEOUT, RENDER_TIMEOUT, VERBOSE.
func LoadServerConfig() (*ServerConfig, error) {
	jwtConfig, err := NewJWTConfig()
	if err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWT:           jwtConfig,
		PreviewURL:    os.Getenv("PREVIEW_URL"),
		ChromePath:    os.Getenv("CHROME_PATH"),
		StylesheetURL: os.Getenv("STYLESHEET_URL"),
		CookieName:    os.Getenv("AUTH_COOKIE_NAME"),
	}

	if cfg.Port, err = intEnv("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.MarkerTimeout, err = durationEnv("MARKER_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.NetworkIdleTimeout, err = durationEnv("NETWORK_IDLE_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RenderTimeout, err = durationEnv("RENDER_TIMEOUT"); err != nil {
		return nil, err
	}
	if v := os.Getenv("VERBOSE"); v != "" {
		if cfg.Verbose, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid VERBOSE: %v", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize fills defaults and validates the configuration.
func (c *ServerConfig) normalize() error {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got: %d", c.Port)
	}
	if c.JWT == nil {
		c.JWT = &JWTConfig{}
	}
	if c.PreviewURL == "" {
		c.PreviewURL = fmt.Sprintf("http://localhost:%d/profile/cvmaker", c.Port)
	}
	u, err := url.Parse(c.PreviewURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PREVIEW_URL must be an absolute http(s) URL, got: %q", c.PreviewURL)
	}
	if c.StylesheetURL == "" {
		c.StylesheetURL = DefaultStylesheetURL
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	for name, d := range map[string]time.Duration{
		"MARKER_TIMEOUT":       c.MarkerTimeout,
		"NETWORK_IDLE_TIMEOUT": c.NetworkIdleTimeout,
		"RENDER_TIMEOUT":       c.RenderTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got: %s", name, d)
		}
	}
	return nil
}

func intEnv(name string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return n, nil
}

// durationEnv accepts Go durations ("5s") or plain milliseconds ("5000").
func durationEnv(name string) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return d, nil
}
