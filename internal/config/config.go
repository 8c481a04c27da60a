// Package config loads server configuration: Trello credentials and
// board access scoping from the environment, and optional tuning
// overrides from a .trellisrc YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/trellis-dev/trellis-mcp/internal/resolve"
)

// Environment variables consumed at startup. Read once; no hot-reload.
const (
	EnvAPIKey        = "TRELLO_API_KEY"
	EnvToken         = "TRELLO_TOKEN"
	EnvAllowedBoards = "TRELLO_ALLOWED_BOARDS"
	EnvDefaultBoard  = "TRELLO_DEFAULT_BOARD"
	EnvCacheTTL      = "TRELLIS_CACHE_TTL_MINUTES"
)

const defaultCacheTTLMinutes = 15

// Config is the assembled server configuration.
type Config struct {
	APIKey string
	Token  string

	// AllowedBoards is the board allow-list; empty admits every board.
	AllowedBoards []string
	// DefaultBoard is used when a tool call omits the board name.
	DefaultBoard string

	CacheTTL   time.Duration
	Thresholds resolve.Thresholds
}

// fileConfig holds user-overridable tuning constants from .trellisrc.
// Pointers distinguish "absent" from zero.
type fileConfig struct {
	MatchThreshold    *float64 `yaml:"match_threshold"`
	FallbackThreshold *float64 `yaml:"fallback_threshold"`
	AmbiguityGap      *float64 `yaml:"ambiguity_gap"`
	CacheTTLMinutes   *int     `yaml:"cache_ttl_minutes"`
}

// Load assembles configuration from the environment plus a .trellisrc
// in dir (usually the working directory). Credentials are required;
// everything else has defaults.
func Load(dir string) (*Config, error) {
	key := os.Getenv(EnvAPIKey)
	token := os.Getenv(EnvToken)
	if key == "" || token == "" {
		return nil, fmt.Errorf("%s and %s must be set", EnvAPIKey, EnvToken)
	}

	cfg := &Config{
		APIKey:        key,
		Token:         token,
		AllowedBoards: splitList(os.Getenv(EnvAllowedBoards)),
		DefaultBoard:  strings.TrimSpace(os.Getenv(EnvDefaultBoard)),
		CacheTTL:      time.Duration(defaultCacheTTLMinutes) * time.Minute,
		Thresholds:    resolve.DefaultThresholds(),
	}

	if raw := os.Getenv(EnvCacheTTL); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("%s: invalid minutes value %q", EnvCacheTTL, raw)
		}
		cfg.CacheTTL = time.Duration(minutes) * time.Minute
	}

	applyFile(cfg, dir)
	return cfg, nil
}

// applyFile overlays tuning overrides from .trellisrc. A missing or
// invalid file leaves the defaults in place.
func applyFile(cfg *Config, dir string) {
	data, err := os.ReadFile(filepath.Join(dir, ".trellisrc"))
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return
	}

	if fc.MatchThreshold != nil {
		cfg.Thresholds.Accept = *fc.MatchThreshold
	}
	if fc.FallbackThreshold != nil {
		cfg.Thresholds.FallbackAccept = *fc.FallbackThreshold
	}
	if fc.AmbiguityGap != nil {
		cfg.Thresholds.AmbiguityGap = *fc.AmbiguityGap
	}
	if fc.CacheTTLMinutes != nil && *fc.CacheTTLMinutes > 0 {
		cfg.CacheTTL = time.Duration(*fc.CacheTTLMinutes) * time.Minute
	}
}

// splitList parses a comma-separated allow-list, dropping empty entries.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
