package sqlserver

import (
	"context"
	"fmt"
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Describe reads the deployed object's structure from the catalog:
// columns with types and identity flags, plus constraint names. Code
// objects have no columns and come back with constraints only.
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
		SELECT c.name, t.name, c.is_nullable, c.is_identity
		FROM sys.columns c
		JOIN sys.types t ON c.user_type_id = t.user_type_id
		WHERE c.object_id = OBJECT_ID(@p1)
		ORDER BY c.column_id
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
		SELECT name FROM sys.objects
		WHERE parent_object_id = OBJECT_ID(@p1)
		  AND type IN ('PK', 'UQ', 'F', 'C', 'D')
		ORDER BY name
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
