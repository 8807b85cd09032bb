package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// ReportRepo implements storage.ReportRepository, one row per unresolved
// object with the full report as jsonb.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a PostgreSQL report repository.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Save inserts one report row.
func (r *ReportRepo) Save(ctx context.Context, report *domain.UnresolvedReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	query := `
		INSERT INTO unresolved_reports (id, object_name, schema_name, kind, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		report.ID, report.ObjectName, report.Schema, string(report.Kind), data, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// List returns all reports, most recent first.
func (r *ReportRepo) List(ctx context.Context) ([]*domain.UnresolvedReport, error) {
	var rows [][]byte
	query := `SELECT document FROM unresolved_reports ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	reports := make([]*domain.UnresolvedReport, 0, len(rows))
	for _, raw := range rows {
		var rep domain.UnresolvedReport
		if err := json.Unmarshal(raw, &rep); err != nil {
			continue
		}
		reports = append(reports, &rep)
	}
	return reports, nil
}
