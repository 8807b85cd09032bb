package storage

import (
	"context"
	"errors"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

var (
	// ErrStoreNotFound is returned when no persisted memory document
	// exists yet. Callers treat it as "start from an empty store".
	ErrStoreNotFound = errors.New("memory store not found")
)

// StoreRepository persists the shared-memory document. The document is
// loaded wholesale at process start and written back wholesale after
// mutation; a write must be atomic (a reader sees the previous document
// or the new one, never a partial).
type StoreRepository interface {
	// Load reads the whole document. A missing document yields
	// ErrStoreNotFound; corrupt content yields an empty valid document,
	// not an error.
	Load(ctx context.Context) (*domain.MemoryDocument, error)

	// Persist writes the whole document atomically.
	Persist(ctx context.Context, doc *domain.MemoryDocument) error

	// Reset removes the persisted document.
	Reset(ctx context.Context) error
}

// ReportRepository persists unresolved reports, one document per object.
type ReportRepository interface {
	// Save writes one report. Reports are immutable after creation.
	Save(ctx context.Context, report *domain.UnresolvedReport) error

	// List returns saved reports, most recent first.
	List(ctx context.Context) ([]*domain.UnresolvedReport, error)
}
