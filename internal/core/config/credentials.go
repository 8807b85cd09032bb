package config

import (
	"fmt"
	"net/url"
	"strconv"
)

// ConnectionConfig is the raw YAML shape of a database connection. It
// accepts either a full DSN or discrete fields, and tolerates the
// equivalent field-name spellings that circulate in credential files
// (user/username, password/pass, database/db/service). Normalize folds
// all of that into one canonical record at the boundary; nothing
// downstream looks at this type again.
type ConnectionConfig struct {
	Dialect string `yaml:"dialect"`
	Schema  string `yaml:"schema"`

	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Pass     string `yaml:"pass"`
	Database string `yaml:"database"`
	DB       string `yaml:"db"`
	Service  string `yaml:"service"`
}

// Credentials is the canonical credential record consumed downstream.
type Credentials struct {
	Dialect  string
	Schema   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

var defaultPorts = map[string]int{
	"oracle":    1521,
	"sqlserver": 1433,
	"postgres":  5432,
}

// Normalize produces the canonical record, preferring a full URL when
// given and falling back to discrete fields with alias resolution.
func (c ConnectionConfig) Normalize() (Credentials, error) {
	creds := Credentials{
		Dialect:  c.Dialect,
		Schema:   c.Schema,
		Host:     c.Host,
		Port:     c.Port,
		User:     firstOf(c.User, c.Username),
		Password: firstOf(c.Password, c.Pass),
		Database: firstOf(c.Database, c.DB, c.Service),
	}

	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil {
			return Credentials{}, fmt.Errorf("parse connection url: %w", err)
		}
		if creds.Dialect == "" {
			creds.Dialect = u.Scheme
		}
		creds.Host = u.Hostname()
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return Credentials{}, fmt.Errorf("invalid connection port %q", p)
			}
			creds.Port = port
		}
		if u.User != nil {
			creds.User = u.User.Username()
			if pw, ok := u.User.Password(); ok {
				creds.Password = pw
			}
		}
		if len(u.Path) > 1 {
			creds.Database = u.Path[1:]
		}
	}

	if creds.Dialect == "" {
		return Credentials{}, fmt.Errorf("connection dialect not set")
	}
	if _, ok := defaultPorts[creds.Dialect]; !ok {
		return Credentials{}, fmt.Errorf("unsupported dialect %q", creds.Dialect)
	}
	if creds.Host == "" {
		return Credentials{}, fmt.Errorf("connection host not set")
	}
	if creds.Port == 0 {
		creds.Port = defaultPorts[creds.Dialect]
	}
	if creds.User == "" {
		return Credentials{}, fmt.Errorf("connection user not set")
	}
	return creds, nil
}

// DSN renders the driver connection string for the dialect.
func (c Credentials) DSN() string {
	auth := url.UserPassword(c.User, c.Password)
	switch c.Dialect {
	case "oracle":
		return fmt.Sprintf("oracle://%s@%s:%d/%s", auth, c.Host, c.Port, c.Database)
	case "sqlserver":
		return fmt.Sprintf("sqlserver://%s@%s:%d?database=%s", auth, c.Host, c.Port, url.QueryEscape(c.Database))
	case "postgres":
		return fmt.Sprintf("postgres://%s@%s:%d/%s?sslmode=disable", auth, c.Host, c.Port, c.Database)
	default:
		return ""
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
