package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks the configuration for errors and fills per-entry defaults.
func validate(cfg *Config) error {
	if len(cfg.Environments) == 0 {
		return fmt.Errorf("at least one environment is required")
	}

	envNames := make(map[string]bool, len(cfg.Environments))
	for i, e := range cfg.Environments {
		if e.Name == "" {
			return fmt.Errorf("environment[%d]: name is required", i)
		}
		if envNames[e.Name] {
			return fmt.Errorf("environment[%d]: duplicate name %q", i, e.Name)
		}
		envNames[e.Name] = true
		if e.APIBaseURL == "" {
			return fmt.Errorf("environment[%d]: api_base_url is required", i)
		}
		if e.Timeout <= 0 {
			cfg.Environments[i].Timeout = 30 * time.Second
		}
		if e.MaxRetries < 0 {
			return fmt.Errorf("environment[%d]: max_retries must not be negative", i)
		}
		if e.MaxRetries == 0 {
			cfg.Environments[i].MaxRetries = 2
		}
	}

	if len(cfg.Suites) == 0 {
		return fmt.Errorf("at least one suite is required")
	}

	known := make(map[string]bool, len(KnownGroups))
	for _, g := range KnownGroups {
		known[g] = true
	}

	for i, s := range cfg.Suites {
		if s.Name == "" {
			return fmt.Errorf("suite[%d]: name is required", i)
		}
		if !envNames[s.Environment] {
			return fmt.Errorf("suite[%d]: unknown environment %q", i, s.Environment)
		}
		if len(s.Groups) == 0 {
			cfg.Suites[i].Groups = append([]string(nil), KnownGroups...)
			continue
		}
		for _, g := range s.Groups {
			if !known[g] {
				return fmt.Errorf("suite[%d]: unknown check group %q", i, g)
			}
		}
	}

	if cfg.Runner.PoolSize <= 0 {
		return fmt.Errorf("runner.pool_size must be positive")
	}
	if cfg.Runner.QueueSize <= 0 {
		return fmt.Errorf("runner.queue_size must be positive")
	}
	if cfg.Runner.MaxRPS <= 0 {
		return fmt.Errorf("runner.max_rps must be positive")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	return nil
}

// EnvironmentByName returns the named environment.
func (c *Config) EnvironmentByName(name string) (Environment, bool) {
	for _, e := range c.Environments {
		if e.Name == name {
			return e, true
		}
	}
	return Environment{}, false
}
