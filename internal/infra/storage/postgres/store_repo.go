package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage"
)

// StoreRepo implements storage.StoreRepository on a single-row jsonb
// document. The upsert replaces the whole document in one statement, so
// persistence is atomic at the transaction level.
type StoreRepo struct {
	db  *DB
	log *slog.Logger
}

// NewStoreRepo creates a PostgreSQL store repository.
func NewStoreRepo(db *DB, log *slog.Logger) *StoreRepo {
	return &StoreRepo{db: db, log: log}
}

// Load reads the document row. No row -> ErrStoreNotFound; an
// undecodable document -> empty valid document (logged).
func (r *StoreRepo) Load(ctx context.Context) (*domain.MemoryDocument, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw, `SELECT document FROM memory_store WHERE id = 1`)
	if err == sql.ErrNoRows {
		return nil, storage.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load memory store: %w", err)
	}

	var doc domain.MemoryDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		r.log.Warn("memory store row is corrupt, starting empty", "error", err)
		return domain.NewMemoryDocument(), nil
	}
	doc.Normalize()
	return &doc, nil
}

// Persist upserts the whole document.
func (r *StoreRepo) Persist(ctx context.Context, doc *domain.MemoryDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode memory store: %w", err)
	}

	query := `
		INSERT INTO memory_store (id, document, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, data); err != nil {
		return fmt.Errorf("persist memory store: %w", err)
	}
	return nil
}

// Reset deletes the document row.
func (r *StoreRepo) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM memory_store WHERE id = 1`); err != nil {
		return fmt.Errorf("reset memory store: %w", err)
	}
	return nil
}
