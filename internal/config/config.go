// Package config provides configuration loading and structs for the ragscope dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvBaseURL overrides api.base_url when set.
const EnvBaseURL = "RAGSCOPE_API_BASE_URL"

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api"`
	Questions QuestionsConfig `yaml:"questions"`
	Inbox     InboxConfig     `yaml:"inbox"`
}

// ServerConfig holds dashboard HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// APIConfig points at the RAG backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// QuestionsConfig holds the initial values of the ask form.
type QuestionsConfig struct {
	DefaultMode   string `yaml:"default_mode"`
	DefaultTopK   int    `yaml:"default_top_k"`
	DefaultRerank *bool  `yaml:"default_rerank"`
}

// RerankOrDefault returns whether rerank starts enabled; defaults to true when unset.
func (q *QuestionsConfig) RerankOrDefault() bool {
	if q.DefaultRerank != nil {
		return *q.DefaultRerank
	}
	return true
}

// InboxConfig holds upload-inbox watch settings.
type InboxConfig struct {
	Directories      []string `yaml:"directories"`
	Extensions       []string `yaml:"extensions"`
	Recursive        *bool    `yaml:"recursive"`
	UploadsPerSecond float64  `yaml:"uploads_per_second"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *InboxConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Inbox.Directories {
		cfg.Inbox.Directories[i] = expandPath(cfg.Inbox.Directories[i], configDir)
	}

	return &cfg, nil
}

// Default returns a config with every default applied, for running without a file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ResolveBaseURL picks the backend base URL: flag, then environment, then the
// config file value. An empty result means the client default.
func ResolveBaseURL(flagValue string, cfg *Config) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		return v
	}
	if cfg != nil {
		return cfg.API.BaseURL
	}
	return ""
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
