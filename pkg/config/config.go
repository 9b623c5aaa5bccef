// Package config loads and validates the assistant's YAML configuration.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/coda-go/pkg/assistant"
	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/errors"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
	"github.com/XiaoConstantine/coda-go/pkg/memory"
	"github.com/XiaoConstantine/coda-go/pkg/router"
)

// Config is the root of the assistant configuration file.
type Config struct {
	Logging    LoggingConfig       `yaml:"logging,omitempty" validate:"omitempty"`
	Memory     MemoryConfig        `yaml:"memory,omitempty" validate:"omitempty"`
	Cache      CacheConfig         `yaml:"cache,omitempty" validate:"omitempty"`
	Workflows  WorkflowsConfig     `yaml:"workflows,omitempty" validate:"omitempty"`
	Composites map[string][]string `yaml:"composites,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// File, when set, mirrors log lines to this file in addition to stderr
	File string `yaml:"file,omitempty"`
}

// MemoryConfig selects and sizes the history backend.
type MemoryConfig struct {
	// Backend is "memory" (default) or "sqlite"
	Backend  string `yaml:"backend,omitempty" validate:"omitempty,oneof=memory sqlite"`
	Capacity int    `yaml:"capacity,omitempty" validate:"omitempty,min=1"`

	// Path is the database file, required for the sqlite backend
	Path string `yaml:"path,omitempty" validate:"required_if=Backend sqlite"`
}

// CacheConfig sizes the result cache. Size zero disables it.
type CacheConfig struct {
	Size int `yaml:"size,omitempty" validate:"omitempty,min=0"`
}

// WorkflowsConfig tunes workflow execution.
type WorkflowsConfig struct {
	MaxConcurrent int `yaml:"max_concurrent,omitempty" validate:"omitempty,min=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging:   LoggingConfig{Level: "INFO"},
		Memory:    MemoryConfig{Backend: "memory", Capacity: memory.DefaultCapacity},
		Cache:     CacheConfig{Size: 128},
		Workflows: WorkflowsConfig{MaxConcurrent: 0},
	}
}

// Load reads, merges with defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "cannot read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.MalformedRequest, "cannot parse config file")
	}
	if cfg.Memory.Capacity == 0 {
		cfg.Memory.Capacity = memory.DefaultCapacity
	}
	if cfg.Memory.Backend == "" {
		cfg.Memory.Backend = "memory"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and composite references.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid configuration")
	}
	for name, sequence := range c.Composites {
		if len(sequence) == 0 {
			return errors.WithFields(
				errors.New(errors.ValidationFailed, "composite workflow has no steps"),
				errors.Fields{"composite": name},
			)
		}
	}
	return nil
}

// LoggingOutputs builds the configured log destinations: stderr always, plus
// the log file when one is set.
func (c *Config) LoggingOutputs() ([]logging.Output, error) {
	outputs := []logging.Output{logging.NewConsoleOutput(true)}
	if c.Logging.File != "" {
		file, err := logging.NewFileOutput(c.Logging.File)
		if err != nil {
			return nil, errors.Wrap(err, errors.ValidationFailed, "cannot open log file")
		}
		outputs = append(outputs, file)
	}
	return outputs, nil
}

// AssistantOptions converts the configuration into assistant construction
// options. The sqlite backend opens its database file here.
func (c *Config) AssistantOptions() ([]assistant.Option, error) {
	opts := []assistant.Option{
		assistant.WithHistoryCapacity(c.Memory.Capacity),
		assistant.WithCacheSize(c.Cache.Size),
		assistant.WithMaxConcurrent(c.Workflows.MaxConcurrent),
	}

	if c.Memory.Backend == "sqlite" {
		history, err := memory.NewSQLiteHistory(c.Memory.Path, c.Memory.Capacity)
		if err != nil {
			return nil, err
		}
		opts = append(opts, assistant.WithHistory(history))
	}

	if len(c.Composites) > 0 {
		table := make(map[router.CompositeName][]core.Capability, len(c.Composites))
		for name, sequence := range c.Composites {
			steps := make([]core.Capability, len(sequence))
			for i, s := range sequence {
				steps[i] = core.Capability(s)
			}
			table[router.CompositeName(name)] = steps
		}
		opts = append(opts, assistant.WithComposites(table))
	}

	return opts, nil
}
