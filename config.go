package fldash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

const (
	DefBackendURL  = "http://localhost:8000"
	DefAuthScheme  = "Basic"
	DefMQTTAddress = "tcp://localhost:1883"
	DefTopicPrefix = "fl"

	configFilePermission = 0o600
	configDirPermission  = 0o700
)

// Config is the command line client configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Auth    AuthConfig    `toml:"auth"`
	MQTT    MQTTConfig    `toml:"mqtt"`
}

type BackendConfig struct {
	URL                string `toml:"url"`
	AuthScheme         string `toml:"auth_scheme"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

type AuthConfig struct {
	Username string `toml:"username"`
	Token    string `toml:"token"`
}

// MQTTConfig points the client at the broker the dashboard publishes
// training state changes to.
type MQTTConfig struct {
	Address     string `toml:"address"`
	TopicPrefix string `toml:"topic_prefix"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL:        DefBackendURL,
			AuthScheme: DefAuthScheme,
		},
		MQTT: MQTTConfig{
			Address:     DefMQTTAddress,
			TopicPrefix: DefTopicPrefix,
		},
	}
}

// LoadConfig reads the config at path. A missing file yields the default
// configuration.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}

		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = DefBackendURL
	}
	if cfg.Backend.AuthScheme == "" {
		cfg.Backend.AuthScheme = DefAuthScheme
	}
	if cfg.MQTT.Address == "" {
		cfg.MQTT.Address = DefMQTTAddress
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefTopicPrefix
	}

	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirPermission); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePermission); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
