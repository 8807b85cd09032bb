package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres target driver

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Deployer executes converted DDL against a PostgreSQL target.
type Deployer struct {
	db *sql.DB
}

// Connect opens and verifies the target connection. A failure here is a
// run-fatal connectivity error.
func Connect(ctx context.Context, dsn string) (*Deployer, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", domain.ErrConnectivity, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", domain.ErrConnectivity, err)
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

// Deploy executes the statement text in one round trip. Postgres accepts
// multi-statement scripts in simple query mode, so no batch splitting is
// needed; the returned error carries the server's raw message.
func (d *Deployer) Deploy(ctx context.Context, text string) error {
	_, err := d.db.ExecContext(ctx, text)
	return err
}

// Describe reads the deployed object's structure from information_schema.
func (d *Deployer) Describe(ctx context.Context, obj *domain.MigrationObject) (*domain.ObjectMetadata, error) {
	meta := &domain.ObjectMetadata{
		Name:        obj.QualifiedName(),
		Kind:        obj.Kind,
		RefreshedAt: time.Now().UTC(),
	}

	if obj.Kind != domain.KindTable {
		return meta, nil
	}

	colQuery := `
		SELECT column_name, data_type, is_nullable = 'YES',
		       is_identity = 'YES'
		FROM information_schema.columns
		WHERE table_name = lower($1)
		ORDER BY ordinal_position
	`
	rows, err := d.db.QueryContext(ctx, colQuery, obj.Name)
	if err != nil {
		return nil, fmt.Errorf("describe columns %s: %w", obj.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var col domain.ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.Identity); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		meta.Columns = append(meta.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	conQuery := `
		SELECT constraint_name FROM information_schema.table_constraints
		WHERE table_name = lower($1)
		ORDER BY constraint_name
	`
	conRows, err := d.db.QueryContext(ctx, conQuery, obj.Name)
	if err != nil {
		return nil, fmt.Errorf("describe constraints %s: %w", obj.Name, err)
	}
	defer conRows.Close()

	for conRows.Next() {
		var name string
		if err := conRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan constraint: %w", err)
		}
		meta.Constraints = append(meta.Constraints, name)
	}
	return meta, conRows.Err()
}
