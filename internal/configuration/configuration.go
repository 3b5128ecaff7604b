package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/sacr/rchat/internal/file"
)

var defaultConfig = Config{
	OpenaiAPIKey:   "API_KEY",
	OpenaiAPIHost:  "https://api.openai.com/v1",
	RequestTimeout: 120,
	DefaultModel:   "gpt-4o",
	Models: []string{
		"gpt-4.1-nano",
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4-turbo",
		"gpt-4",
		"gpt-3.5-turbo",
	},
	ChatFile: "~/.config/rchat/chats.json",
}

// Config holds configuration for the rchat tool.
type Config struct {
	OpenaiAPIKey   string `json:"openai_api_key"`
	OpenaiAPIHost  string `json:"openai_api_host"`
	RequestTimeout int    `json:"request_timeout"`
	// The model used when none is specified on the command line.
	DefaultModel string `json:"default_model"`
	// The models a user may select from.
	Models []string `json:"models"`
	// The file where we store chats.
	ChatFile string `json:"chat_file"`
}

// ResolveModel checks a model name against the configured allow-list.
func (c *Config) ResolveModel(name string) (string, error) {
	if name == "" {
		name = c.DefaultModel
	}
	for _, model := range c.Models {
		if model == name {
			return model, nil
		}
	}
	return "", errors.Errorf("unknown model (%s)", name)
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}

	// A hand-edited config may omit the timeout; zero would fail every
	// exchange instantly.
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaultConfig.RequestTimeout
	}

	expandedChatFilePath, err := file.ExpandPath(config.ChatFile)
	if err != nil {
		return nil, errors.Wrap(err, "expanding chat file path")
	}
	config.ChatFile = expandedChatFilePath
	return config, nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
