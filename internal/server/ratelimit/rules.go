package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one class of requests. Every path matching a rule shares the
// rule's bucket, so /resumes/4 and /resumes/9 draw from the same allowance.
type Rule struct {
	Name   string
	Method string
	// Prefixes match the request path exactly, or as a prefix when they end in "/".
	Prefixes []string
	Limit    int           // Maximum requests per window
	Window   time.Duration // Time window
	Burst    int           // Burst capacity (defaults to Limit if 0)
}

func (r *Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	for _, p := range r.Prefixes {
		if p == path || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in rules. Exports start a browser and get the
// strictest allowance; writes to persisted resumes come next. Everything else,
// editor keystrokes included, falls under the default limit.
func DefaultRules() []Rule {
	exportPaths := []string{"/api/generate-pdf", "/api/v1/generate-pdf"}
	return []Rule{
		{Name: "export", Method: http.MethodGet, Prefixes: exportPaths, Limit: 20, Window: time.Hour, Burst: 3},
		{Name: "export", Method: http.MethodPost, Prefixes: exportPaths, Limit: 20, Window: time.Hour, Burst: 3},
		{Name: "persist", Method: http.MethodPost, Prefixes: []string{"/resumes", "/api/v1/resumes", "/editor/save"}, Limit: 60, Window: time.Minute, Burst: 10},
		{Name: "persist", Method: http.MethodDelete, Prefixes: []string{"/resumes/", "/api/v1/resumes/"}, Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// DefaultExempt lists the paths that are never limited.
func DefaultExempt() []string {
	return []string{"/health", "/metrics"}
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket survives cleanup.
	IdleTTL   time.Duration
	AllowList map[string]bool
	DenyList  map[string]bool
	Rules     []Rule
	Exempt    []string
}

// rule returns the rule for a request, a synthetic default rule, or nil when
// the path is exempt.
func (c *Config) rule(method, path string) *Rule {
	for _, p := range c.Exempt {
		if p == path {
			return nil
		}
	}
	for i := range c.Rules {
		if c.Rules[i].matches(method, path) {
			return &c.Rules[i]
		}
	}
	return &Rule{Name: "default", Limit: c.DefaultLimit, Window: c.DefaultWindow, Burst: c.DefaultLimit}
}

// LoadConfig reads the RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         envDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		AllowList:       parseIPList(os.Getenv("RATE_LIMIT_ALLOWLIST")),
		DenyList:        parseIPList(os.Getenv("RATE_LIMIT_DENYLIST")),
		Rules:           DefaultRules(),
		Exempt:          DefaultExempt(),
	}
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

// parseIPList parses a comma-separated list of client addresses.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
