// Package config loads the application configuration from a JSON file with
// .env and environment-variable overrides for the API key.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	GoogleAPIKey   string        `json:"google_api_key"`
	Model          string        `json:"model,omitempty"`
	ProjectLibrary string        `json:"project_library,omitempty"`
	Defaults       DefaultConfig `json:"defaults"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// GetModel returns the configured model or the default if not specified.
func (c *Config) GetModel() (model string) {
	if c.Model != "" {
		model = c.Model
		return model
	}
	model = "gemini-1.5-flash"
	return model
}

// Load reads configuration from file with environment variable overrides.
// A missing config file is fine as long as GOOGLE_API_KEY is set in the
// environment or a .env file; the key is the only required value.
func Load(configPath string) (cfg Config, err error) {
	// A .env in the working directory feeds the environment before overrides
	// are applied.
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return cfg, err
		}
		path = filepath.Join(homeDir, ".resume-optimizer", "config.json")
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			err = errors.Wrapf(err, "failed to read config file: %s", path)
			return cfg, err
		}
		if configPath != "" {
			err = errors.Errorf("config file not found: %s", configPath)
			return cfg, err
		}
		err = nil
	} else {
		err = json.Unmarshal(data, &cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	}

	// Override with environment variable if set
	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		cfg.GoogleAPIKey = apiKey
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() (err error) {
	if c.GoogleAPIKey == "" {
		err = errors.New("google_api_key is required (set in config, .env, or GOOGLE_API_KEY env var)")
		return err
	}

	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "."
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return err
		}
		path = filepath.Join(homeDir, ".resume-optimizer", "config.json")
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	defaultConfig := Config{
		GoogleAPIKey:   "your-api-key",
		Model:          "gemini-1.5-flash",
		ProjectLibrary: "projects.txt",
		Defaults: DefaultConfig{
			OutputDir: ".",
		},
	}

	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
