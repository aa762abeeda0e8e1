// Package config handles global configuration stored in
// ~/.config/vocabmap/config.yml, with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the global configuration. Zero values fall back to the
// defaults at resolution time, so a missing config file is fully usable.
type Config struct {
	SessionsRoot string  `yaml:"sessions_root,omitempty"`
	OllamaURL    string  `yaml:"ollama_url,omitempty"`
	OllamaModel  string  `yaml:"ollama_model,omitempty"`
	Dimensions   int     `yaml:"dimensions,omitempty"`
	RateLimit    float64 `yaml:"rate_limit,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "vocabmap"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Defaults applied when neither config file nor environment sets a value.
const (
	DefaultSessionsDir = "vocabmap_sessions"
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "nomic-embed-text"
	DefaultDimensions  = 768
	DefaultRateLimit   = 20.0
)

// Environment variables that override config file values.
const (
	EnvSessionsRoot = "VOCABMAP_SESSIONS"
	EnvOllamaURL    = "OLLAMA_URL"
	EnvOllamaModel  = "OLLAMA_MODEL"
)

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/vocabmap/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the global configuration. A `.env` file in the working
// directory is applied to the environment first (existing variables win),
// then environment overrides are layered on top of the file values.
// Returns a default config (not an error) if the file doesn't exist.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	godotenv.Load()

	cfg := &Config{}
	path := Path()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if v := os.Getenv(EnvSessionsRoot); v != "" {
		cfg.SessionsRoot = v
	}
	if v := os.Getenv(EnvOllamaURL); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv(EnvOllamaModel); v != "" {
		cfg.OllamaModel = v
	}

	if cfg.SessionsRoot != "" {
		cfg.SessionsRoot = ExpandTilde(cfg.SessionsRoot)
	}

	configCache = cfg
	return cfg, nil
}

// LoadFile reads only the config file, without environment overrides or
// tilde expansion. Use this when editing values to write back: overrides
// never leak into the saved file.
func LoadFile() (*Config, error) {
	cfg := &Config{}
	path := Path()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ResetCache clears the cached config. Useful for testing.
func ResetCache() {
	configCache = nil
}

// Save writes the configuration to the global config file, creating the
// config directory if needed.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ResolveSessionsRoot returns the sessions root, falling back to a
// default directory under the user's home.
func (c *Config) ResolveSessionsRoot() string {
	if c.SessionsRoot != "" {
		return c.SessionsRoot
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultSessionsDir
	}
	return filepath.Join(home, DefaultSessionsDir)
}

// ResolveOllamaURL returns the Ollama base URL, falling back to the default.
func (c *Config) ResolveOllamaURL() string {
	if c.OllamaURL != "" {
		return c.OllamaURL
	}
	return DefaultOllamaURL
}

// ResolveOllamaModel returns the embedding model name, falling back to the default.
func (c *Config) ResolveOllamaModel() string {
	if c.OllamaModel != "" {
		return c.OllamaModel
	}
	return DefaultOllamaModel
}

// ResolveDimensions returns the embedding dimension count, falling back to the default.
func (c *Config) ResolveDimensions() int {
	if c.Dimensions > 0 {
		return c.Dimensions
	}
	return DefaultDimensions
}

// ResolveRateLimit returns the embedding requests-per-second limit, falling
// back to the default.
func (c *Config) ResolveRateLimit() float64 {
	if c.RateLimit > 0 {
		return c.RateLimit
	}
	return DefaultRateLimit
}

// Keys returns the settable config keys in sorted order.
func Keys() []string {
	keys := []string{"sessions_root", "ollama_url", "ollama_model", "dimensions", "rate_limit"}
	sort.Strings(keys)
	return keys
}

// Get returns the configured value for a key, or an error for unknown keys.
// Unset values return the empty string rather than the resolved default.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "sessions_root":
		return c.SessionsRoot, nil
	case "ollama_url":
		return c.OllamaURL, nil
	case "ollama_model":
		return c.OllamaModel, nil
	case "dimensions":
		if c.Dimensions == 0 {
			return "", nil
		}
		return strconv.Itoa(c.Dimensions), nil
	case "rate_limit":
		if c.RateLimit == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.RateLimit, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys())
}

// Set updates the value for a key, validating numeric fields.
func (c *Config) Set(key, value string) error {
	switch key {
	case "sessions_root":
		c.SessionsRoot = value
		return nil
	case "ollama_url":
		c.OllamaURL = value
		return nil
	case "ollama_model":
		c.OllamaModel = value
		return nil
	case "dimensions":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("dimensions must be a positive integer: %s", value)
		}
		c.Dimensions = n
		return nil
	case "rate_limit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("rate_limit must be a positive number: %s", value)
		}
		c.RateLimit = f
		return nil
	}
	return fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys())
}

// ExpandTilde expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
