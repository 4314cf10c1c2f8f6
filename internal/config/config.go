// Package config loads and saves the docdeploy YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultCommitMessage is the message used when committing the deployed file.
const DefaultCommitMessage = `Add API documentation review command

Add /review-docs slash command for consistent API documentation review
across connectors for low-code editor compatibility.`

// Config is the on-disk docdeploy configuration. Command-line flags
// override individual fields for a single run.
type Config struct {
	Source        string `yaml:"source"`
	TargetDir     string `yaml:"target_dir"`
	TargetName    string `yaml:"target_name"`
	CommitMessage string `yaml:"commit_message"`
	// WorkDir holds clones of remote repositories. Empty means a temporary
	// directory that is removed when the run finishes.
	WorkDir string `yaml:"work_dir,omitempty"`
}

// DefaultConfig returns the built-in settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Source:        filepath.Join(".claude", "commands", "review-docs.md"),
		TargetDir:     filepath.Join(".claude", "commands"),
		TargetName:    "review-docs.md",
		CommitMessage: DefaultCommitMessage,
	}
}

// ConfigPath returns the default config location (~/.docdeploy/config.yaml).
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".docdeploy", "config.yaml"), nil
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores defaults for keys that were present but left empty.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Source == "" {
		c.Source = def.Source
	}
	if c.TargetDir == "" {
		c.TargetDir = def.TargetDir
	}
	if c.TargetName == "" {
		c.TargetName = def.TargetName
	}
	if c.CommitMessage == "" {
		c.CommitMessage = def.CommitMessage
	}
}

// Save writes the config to the default location.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config as YAML to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	path = ExpandPath(path)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unexpanded if home unavailable
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
