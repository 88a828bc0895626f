// Package config loads the application configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/eduindia/internal/agents"
	"github.com/abhisek/eduindia/internal/learner"
	"github.com/abhisek/eduindia/internal/llm"
	"github.com/abhisek/eduindia/internal/logging"
)

// Config is the full application configuration.
type Config struct {
	LLM      llm.Config     `yaml:"llm"`
	Agents   agents.Config  `yaml:"agents"`
	Revision RevisionConfig `yaml:"revision"`
	Logging  logging.Config `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Profiles []learner.Seed `yaml:"profiles"`
}

// RevisionConfig tunes the study planner.
type RevisionConfig struct {
	// StaleAfter flags concepts not studied for this long as overdue.
	// Zero disables the flag.
	StaleAfter time.Duration `yaml:"stale_after"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// SessionTTL ends API sessions idle for this long. Zero keeps them
	// until the client deletes them.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type StoreConfig struct {
	// Path of the LLM event log. Empty means the default data directory;
	// ":memory:" keeps the log in memory.
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM:      llm.DefaultConfig(),
		Agents:   agents.DefaultConfig(),
		Revision: RevisionConfig{StaleAfter: 7 * 24 * time.Hour},
		Logging:  logging.DefaultConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 3 * time.Minute,
			SessionTTL:   24 * time.Hour,
		},
		Profiles: learner.DefaultSeeds(),
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path, or a path that does not exist when optional is true,
// yields the defaults.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && optional:
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LLM.ApplyEnv()
	if v := os.Getenv("EDUINDIA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EDUINDIA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("EDUINDIA_DB"); v != "" {
		c.Store.Path = v
	}
}

// Validate checks settings that have no usable fallback. A missing API
// key is not an error here: the tutor still starts and reports the
// problem in its replies.
func (c Config) Validate() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required")
	}
	if c.Agents.MaxTokens <= 0 || c.Agents.StructuredMaxTokens <= 0 {
		return fmt.Errorf("agents: max tokens must be positive")
	}
	if c.Revision.StaleAfter < 0 {
		return fmt.Errorf("revision: stale_after must not be negative")
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("server: session_ttl must not be negative")
	}
	return nil
}
