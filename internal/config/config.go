// Package config loads application configuration. This is deployment
// configuration (paths, connection knobs); the user-facing toggles live in
// the settings package and are persisted per install.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// ControlURL is the DevTools websocket of a running Chrome instance
	// (e.g. ws://127.0.0.1:9222). Empty means no browser is attached; tab
	// operations answer NO_BROWSER.
	ControlURL string `json:"control_url,omitempty"`

	// WebBind is the address the HTTP surface listens on.
	WebBind string `json:"web_bind,omitempty"`

	// WebPort is the HTTP surface port.
	WebPort int `json:"web_port,omitempty"`

	// DBMaxOpenConns limits open database connections. If set to 1 all
	// database access is serialized, which reduces "database is locked"
	// errors. 0 means the sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections. 0 means the sql.DB
	// default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WebBind: "127.0.0.1",
		WebPort: 8787,
	}
}

// Load loads configuration from baseDir/config.json. Returns default
// config if the file doesn't exist. The baseDir parameter lets tests use
// t.TempDir() instead of ~/.tabstash.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path. Returns a
// zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ControlURL = overlay.ControlURL
	if result.ControlURL == "" {
		result.ControlURL = base.ControlURL
	}

	result.WebBind = overlay.WebBind
	if result.WebBind == "" {
		result.WebBind = base.WebBind
	}

	result.WebPort = overlay.WebPort
	if result.WebPort == 0 {
		result.WebPort = base.WebPort
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeUnique(base.DisabledTools, overlay.DisabledTools)
	return result
}

func mergeUnique(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// BaseDir returns the tabstash base directory, ~/.tabstash by default,
// overridable with TABSTASH_DIR.
func BaseDir() (string, error) {
	if dir := os.Getenv("TABSTASH_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tabstash"), nil
}
