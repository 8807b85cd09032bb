package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb" // sqlserver driver

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Deployer executes converted DDL against a SQL Server target.
type Deployer struct {
	db *sql.DB
}

// Connect opens and verifies the target connection. A failure here is a
// run-fatal connectivity error.
func Connect(ctx context.Context, dsn string) (*Deployer, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlserver: %v", domain.ErrConnectivity, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlserver: %v", domain.ErrConnectivity, err)
	}
	return &Deployer{db: db}, nil
}

// Close closes the target connection.
func (d *Deployer) Close() error {
	return d.db.Close()
}

// Health checks if the target is reachable.
func (d *Deployer) Health(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// goSeparator splits T-SQL scripts on batch separators. GO must stand
// alone on its line.
var goSeparator = regexp.MustCompile(`(?im)^\s*GO\s*$`)

// Deploy executes the statement text batch by batch. The returned error
// carries the server's raw message for classification; execution stops
// at the first failing batch.
func (d *Deployer) Deploy(ctx context.Context, text string) error {
	for _, batch := range goSeparator.Split(text, -1) {
		batch = strings.TrimSpace(batch)
		if batch == "" {
			continue
		}
		if _, err := d.db.ExecContext(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}
