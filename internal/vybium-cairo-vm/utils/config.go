package utils

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Halt policy names accepted by Config.HaltPolicy
const (
	HaltPolicyUnallocatedPC = "unallocated-pc"
	HaltPolicyEndPC         = "end-pc"
)

// DefaultMaxSteps bounds a run when no limit is configured
const DefaultMaxSteps = 1 << 20

// Config represents the configuration of a program run
type Config struct {
	// Memory layout
	ProgramBase uint64 `yaml:"program_base"` // Address of the first program word

	// Termination
	MaxSteps   uint64 `yaml:"max_steps"`   // Step ceiling, 0 disables it
	HaltPolicy string `yaml:"halt_policy"` // "unallocated-pc" or "end-pc"
	HaltPC     uint64 `yaml:"halt_pc"`     // Target pc for "end-pc"

	// Trace generation
	RecordTrace  bool   `yaml:"record_trace"`
	HashFunction string `yaml:"hash_function"` // "sha256" or "sha3"

	// Logging
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration for the standard Cairo layout:
// program at address 1, halting once pc leaves the allocated segment
func DefaultConfig() *Config {
	return &Config{
		ProgramBase:  1,
		MaxSteps:     DefaultMaxSteps,
		HaltPolicy:   HaltPolicyUnallocatedPC,
		RecordTrace:  true,
		HashFunction: "sha3",
		LogLevel:     "info",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.HaltPolicy {
	case HaltPolicyUnallocatedPC:
	case HaltPolicyEndPC:
		if c.HaltPC < c.ProgramBase {
			return fmt.Errorf("halt pc %d lies below the program base %d", c.HaltPC, c.ProgramBase)
		}
	default:
		return fmt.Errorf("halt policy must be '%s' or '%s', got '%s'",
			HaltPolicyUnallocatedPC, HaltPolicyEndPC, c.HaltPolicy)
	}

	if c.HashFunction != "sha256" && c.HashFunction != "sha3" {
		return fmt.Errorf("hash function must be 'sha256' or 'sha3', got '%s'", c.HashFunction)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level '%s': %w", c.LogLevel, err)
	}
	return lvl, nil
}

// WithProgramBase sets the program base address
func (c *Config) WithProgramBase(base uint64) *Config {
	c.ProgramBase = base
	return c
}

// WithMaxSteps sets the step ceiling
func (c *Config) WithMaxSteps(steps uint64) *Config {
	c.MaxSteps = steps
	return c
}

// WithEndPC switches to the "end-pc" halt policy
func (c *Config) WithEndPC(pc uint64) *Config {
	c.HaltPolicy = HaltPolicyEndPC
	c.HaltPC = pc
	return c
}

// WithRecordTrace toggles trace generation
func (c *Config) WithRecordTrace(record bool) *Config {
	c.RecordTrace = record
	return c
}

// WithHashFunction sets the hash function
func (c *Config) WithHashFunction(hashFunc string) *Config {
	c.HashFunction = hashFunc
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
