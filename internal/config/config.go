// Package config loads kbctl configuration from its YAML file, environment,
// and defaults. Flag overrides are applied by the CLI layer on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFile = "config.yaml"

// Config holds shared configuration for all kbctl commands.
type Config struct {
	// ServerURL is the base URL of the knowledge2 identity service.
	ServerURL string `yaml:"server_url"`
	// CredentialsPath overrides where the session token pair is persisted.
	// Empty means the default ~/.kbctl/credentials.json.
	CredentialsPath string `yaml:"credentials_path"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL: "http://localhost:8000",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultPath returns the default config file location
// (~/.kbctl/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".kbctl", configFile), nil
}

// Load reads configuration from path, layered over the defaults and under
// environment overrides. A missing file is not an error; it just yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if s := os.Getenv("KBCTL_SERVER"); s != "" {
		cfg.ServerURL = s
	}
	return cfg, nil
}
