package config

import (
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/converter"
	redisclient "github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/redis"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage/postgres"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/translate"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/websearch"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Source     ConnectionConfig   `yaml:"source"`
	Target     ConnectionConfig   `yaml:"target"`
	Converter  converter.Config   `yaml:"converter"`
	Translator translate.Config   `yaml:"translator"`
	Search     websearch.Config   `yaml:"search"`
	Redis      redisclient.Config `yaml:"redis"`
	Memory     MemoryConfig       `yaml:"memory"`
	Database   postgres.Config    `yaml:"database"`
	Migration  MigrationConfig    `yaml:"migration"`
	Logging    LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds ops HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MemoryConfig holds shared-memory store settings for the file backend.
// When database.url is set, the postgres backend is used instead of the
// file path.
type MemoryConfig struct {
	Path       string `yaml:"path"`
	ReportsDir string `yaml:"reports_dir"`
	FlushEvery int    `yaml:"flush_every"`
}

// MigrationConfig bounds the per-object workflow.
type MigrationConfig struct {
	MaxAttempts      int           `yaml:"max_attempts"`      // repair budget, 1-10
	WarningThreshold int           `yaml:"warning_threshold"` // primary acceptance
	PatternLimit     int           `yaml:"pattern_limit"`     // patterns priming fallback
	SolutionLimit    int           `yaml:"solution_limit"`    // memory hits per repair
	DeployTimeout    time.Duration `yaml:"deploy_timeout"`
}
