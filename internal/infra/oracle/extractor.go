package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/sijms/go-ora/v2" // oracle driver

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Extractor reads migratable objects and their DDL from an Oracle
// schema.
type Extractor struct {
	db     *sql.DB
	schema string
}

// Connect opens and verifies the source connection. A failure here is a
// run-fatal connectivity error.
func Connect(ctx context.Context, dsn, schema string) (*Extractor, error) {
	db, err := sql.Open("oracle", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open oracle: %v", domain.ErrConnectivity, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping oracle: %v", domain.ErrConnectivity, err)
	}
	return &Extractor{db: db, schema: strings.ToUpper(schema)}, nil
}

// Close closes the source connection.
func (e *Extractor) Close() error {
	return e.db.Close()
}

// Health checks if the source is reachable.
func (e *Extractor) Health(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

var kindToOracleType = map[domain.ObjectKind]string{
	domain.KindTable:     "TABLE",
	domain.KindProcedure: "PROCEDURE",
	domain.KindFunction:  "FUNCTION",
	domain.KindTrigger:   "TRIGGER",
}

// ListObjects returns all migratable objects of the schema in dependency
// order: tables first, then standalone code objects, then package
// members (packages decomposed into one object per member).
func (e *Extractor) ListObjects(ctx context.Context) ([]*domain.MigrationObject, error) {
	var objects []*domain.MigrationObject

	for _, kind := range domain.MigrationOrder {
		if kind == domain.KindPackageMember {
			members, err := e.listPackageMembers(ctx)
			if err != nil {
				return nil, err
			}
			objects = append(objects, members...)
			continue
		}

		names, err := e.listNames(ctx, kindToOracleType[kind])
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			objects = append(objects, domain.NewObject(e.schema, name, kind))
		}
	}
	return objects, nil
}

func (e *Extractor) listNames(ctx context.Context, objectType string) ([]string, error) {
	query := `
		SELECT object_name FROM all_objects
		WHERE owner = :1 AND object_type = :2 AND status = 'VALID'
		ORDER BY object_name
	`
	rows, err := e.db.QueryContext(ctx, query, e.schema, objectType)
	if err != nil {
		return nil, fmt.Errorf("list %s objects: %w", objectType, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan object name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// listPackageMembers decomposes every package body in the schema.
func (e *Extractor) listPackageMembers(ctx context.Context) ([]*domain.MigrationObject, error) {
	pkgs, err := e.listNames(ctx, "PACKAGE")
	if err != nil {
		return nil, err
	}

	var objects []*domain.MigrationObject
	for _, pkg := range pkgs {
		body, err := e.fetchSource(ctx, pkg, "PACKAGE BODY")
		if err != nil {
			return nil, fmt.Errorf("fetch package body %s: %w", pkg, err)
		}
		for _, m := range SplitPackage(body) {
			obj := domain.NewObject(e.schema, pkg+"."+m.Name, domain.KindPackageMember)
			obj.SourceText = m.Text
			objects = append(objects, obj)
		}
	}
	return objects, nil
}

// FetchDDL loads the source definition for one object. Package members
// already carry their text from decomposition.
func (e *Extractor) FetchDDL(ctx context.Context, obj *domain.MigrationObject) (string, error) {
	switch obj.Kind {
	case domain.KindPackageMember:
		if obj.SourceText == "" {
			return "", fmt.Errorf("package member %s has no decomposed source", obj.QualifiedName())
		}
		return obj.SourceText, nil
	case domain.KindTable:
		return e.fetchTableDDL(ctx, obj.Name)
	default:
		src, err := e.fetchSource(ctx, obj.Name, kindToOracleType[obj.Kind])
		if err != nil {
			return "", err
		}
		return "CREATE OR REPLACE " + src, nil
	}
}

func (e *Extractor) fetchTableDDL(ctx context.Context, name string) (string, error) {
	var ddl string
	query := `SELECT DBMS_METADATA.GET_DDL('TABLE', :1, :2) FROM dual`
	if err := e.db.QueryRowContext(ctx, query, name, e.schema).Scan(&ddl); err != nil {
		return "", fmt.Errorf("fetch table ddl %s: %w", name, err)
	}
	return strings.TrimSpace(ddl), nil
}

// fetchSource concatenates ALL_SOURCE lines for a code object.
func (e *Extractor) fetchSource(ctx context.Context, name, sourceType string) (string, error) {
	query := `
		SELECT text FROM all_source
		WHERE owner = :1 AND name = :2 AND type = :3
		ORDER BY line
	`
	rows, err := e.db.QueryContext(ctx, query, e.schema, name, sourceType)
	if err != nil {
		return "", fmt.Errorf("fetch source %s %s: %w", sourceType, name, err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", fmt.Errorf("scan source line: %w", err)
		}
		b.WriteString(line)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no source found for %s %s", sourceType, name)
	}
	return b.String(), nil
}
