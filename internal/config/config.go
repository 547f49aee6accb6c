package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Remote struct {
		BaseURL        string `koanf:"base_url"`
		TimeoutSeconds int    `koanf:"timeout_seconds"`
	} `koanf:"remote"`

	Gateway struct {
		RequestsPerMinute int `koanf:"requests_per_minute"`
	} `koanf:"gateway"`

	Storage struct {
		Path string `koanf:"path"`
	} `koanf:"storage"`

	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"remote.base_url":             "http://localhost:8000",
		"remote.timeout_seconds":      60,
		"gateway.requests_per_minute": 30,
		"storage.path":                "./csdata/codesentry.db",
		"server.port":                 8385,
		"log.level":                   "info",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try default locations - prioritize csdata for containerized environments
		defaultPaths := []string{"./csdata/codesentry.toml", "./codesentry.toml", "$HOME/.codesentry.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix CODESENTRY_
	k.Load(env.Provider("CODESENTRY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(s), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# CodeSentry Configuration

[remote]
base_url = "http://localhost:8000"
timeout_seconds = 60

[gateway]
requests_per_minute = 30

[storage]
path = "./csdata/codesentry.db"

[server]
port = 8385

[log]
level = "info"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Remote.BaseURL == "" {
		return fmt.Errorf("remote base_url is required")
	}

	parsed, err := url.Parse(config.Remote.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("remote base_url %q is not a valid URL", config.Remote.BaseURL)
	}

	if config.Remote.TimeoutSeconds <= 0 {
		return fmt.Errorf("remote timeout_seconds must be positive")
	}

	if config.Gateway.RequestsPerMinute < 0 {
		return fmt.Errorf("gateway requests_per_minute must not be negative")
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}

	return nil
}
