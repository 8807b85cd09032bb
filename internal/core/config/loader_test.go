package config

import (
	"os"
	"testing"
)

func TestLoad_EnvSubstitution(t *testing.T) {
	// Setup env var
	os.Setenv("TEST_ORA_PASS", "s3cret")
	defer os.Unsetenv("TEST_ORA_PASS")

	// Create temp config file
	configContent := `
source:
  host: ora-prod
  user: scott
  password: ${TEST_ORA_PASS}
  service: ORCL
`
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte(configContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	// Load config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.Password != "s3cret" {
		t.Errorf("Expected password s3cret, got %s", cfg.Source.Password)
	}
	if cfg.Source.Dialect != "oracle" {
		t.Errorf("Expected default source dialect oracle, got %s", cfg.Source.Dialect)
	}
	if cfg.Migration.MaxAttempts != 3 {
		t.Errorf("Expected default max_attempts 3, got %d", cfg.Migration.MaxAttempts)
	}
}

func TestLoad_RejectsBadAttemptBudget(t *testing.T) {
	configContent := `
migration:
  max_attempts: 11
`
	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte(configContent)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	if _, err := Load(tmpFile.Name()); err == nil {
		t.Fatal("Expected error for max_attempts above 10, got nil")
	}
}

func TestNormalize_FieldAliases(t *testing.T) {
	conn := ConnectionConfig{
		Dialect:  "sqlserver",
		Host:     "mssql-host",
		Username: "sa",
		Pass:     "pw",
		DB:       "Staging",
	}
	creds, err := conn.Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if creds.User != "sa" {
		t.Errorf("Expected user sa, got %s", creds.User)
	}
	if creds.Password != "pw" {
		t.Errorf("Expected password pw, got %s", creds.Password)
	}
	if creds.Database != "Staging" {
		t.Errorf("Expected database Staging, got %s", creds.Database)
	}
	if creds.Port != 1433 {
		t.Errorf("Expected default port 1433, got %d", creds.Port)
	}
}

func TestNormalize_URLOverridesFields(t *testing.T) {
	conn := ConnectionConfig{
		URL:  "postgres://app:pw@pg-host:5433/target",
		Host: "ignored",
		User: "ignored",
	}
	creds, err := conn.Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if creds.Dialect != "postgres" {
		t.Errorf("Expected dialect postgres, got %s", creds.Dialect)
	}
	if creds.Host != "pg-host" || creds.Port != 5433 {
		t.Errorf("Expected pg-host:5433, got %s:%d", creds.Host, creds.Port)
	}
	if creds.Database != "target" {
		t.Errorf("Expected database target, got %s", creds.Database)
	}
}

func TestDSN_PerDialect(t *testing.T) {
	creds := Credentials{Dialect: "oracle", Host: "h", Port: 1521, User: "u", Password: "p", Database: "ORCL"}
	if got := creds.DSN(); got != "oracle://u:p@h:1521/ORCL" {
		t.Errorf("Unexpected oracle DSN: %s", got)
	}
	creds.Dialect = "sqlserver"
	creds.Port = 1433
	if got := creds.DSN(); got != "sqlserver://u:p@h:1433?database=ORCL" {
		t.Errorf("Unexpected sqlserver DSN: %s", got)
	}
}
