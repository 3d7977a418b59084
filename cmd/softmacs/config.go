package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the driver's knobs, loaded from an optional softmacs.yml
// in the working directory (or the file SOFTMACS_CONFIG points at). An
// absent file means defaults; a malformed one is an error. The runtime
// itself takes only the heap capacity; everything else is presentation.
type Config struct {
	Capacity   int    `yaml:"capacity"`
	History    string `yaml:"history"`
	Prompt     string `yaml:"prompt"`
	ContPrompt string `yaml:"cont_prompt"`
	Color      bool   `yaml:"color"`
}

func defaultConfig() Config {
	return Config{
		Capacity:   1024,
		Prompt:     "> ",
		ContPrompt: "... ",
		Color:      true,
	}
}

func loadConfig() (Config, error) {
	cfg := defaultConfig()

	path := os.Getenv("SOFTMACS_CONFIG")
	if path == "" {
		path = "softmacs.yml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Capacity < 1 {
		return cfg, fmt.Errorf("config %s: capacity must be positive", path)
	}
	return cfg, nil
}

func (c Config) historyPath() string {
	if c.History != "" {
		return c.History
	}
	return defaultHistoryPath()
}
