package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Memory.Path == "" {
		cfg.Memory.Path = "migration_memory.json"
	}
	if cfg.Memory.ReportsDir == "" {
		cfg.Memory.ReportsDir = "unresolved_reports"
	}
	if cfg.Memory.FlushEvery == 0 {
		cfg.Memory.FlushEvery = 1
	}
	if cfg.Migration.MaxAttempts == 0 {
		cfg.Migration.MaxAttempts = 3
	}
	if cfg.Migration.WarningThreshold == 0 {
		cfg.Migration.WarningThreshold = 5
	}
	if cfg.Migration.PatternLimit == 0 {
		cfg.Migration.PatternLimit = 5
	}
	if cfg.Migration.SolutionLimit == 0 {
		cfg.Migration.SolutionLimit = 3
	}
	if cfg.Migration.DeployTimeout == 0 {
		cfg.Migration.DeployTimeout = 60 * time.Second
	}
	if cfg.Source.Dialect == "" && cfg.Source.URL == "" {
		cfg.Source.Dialect = "oracle"
	}
	if cfg.Target.Dialect == "" && cfg.Target.URL == "" {
		cfg.Target.Dialect = "sqlserver"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the bounds the workflow depends on.
func (c *AppConfig) Validate() error {
	if c.Migration.MaxAttempts < 1 || c.Migration.MaxAttempts > 10 {
		return fmt.Errorf("migration.max_attempts must be between 1 and 10, got %d", c.Migration.MaxAttempts)
	}
	if c.Source.Dialect != "" && c.Source.Dialect != "oracle" {
		return fmt.Errorf("source.dialect must be oracle, got %q", c.Source.Dialect)
	}
	switch c.Target.Dialect {
	case "", "sqlserver", "postgres":
	default:
		return fmt.Errorf("target.dialect must be sqlserver or postgres, got %q", c.Target.Dialect)
	}
	return nil
}
