package memory

import (
	"context"
	"sync"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage"
)

// Storage is an in-memory implementation of the storage repositories,
// used in tests and as a last-resort backend when no durable path is
// configured.
type Storage struct {
	mu      sync.RWMutex
	doc     *domain.MemoryDocument
	reports []*domain.UnresolvedReport
}

// New creates empty in-memory storage.
func New() *Storage {
	return &Storage{}
}

// StoreRepo returns the in-memory store repository.
func (s *Storage) StoreRepo() storage.StoreRepository {
	return (*storeRepo)(s)
}

// ReportRepo returns the in-memory report repository.
func (s *Storage) ReportRepo() storage.ReportRepository {
	return (*reportRepo)(s)
}

type storeRepo Storage

func (r *storeRepo) Load(ctx context.Context) (*domain.MemoryDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.doc == nil {
		return nil, storage.ErrStoreNotFound
	}
	return r.doc.Clone(), nil
}

func (r *storeRepo) Persist(ctx context.Context, doc *domain.MemoryDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = doc.Clone()
	return nil
}

func (r *storeRepo) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = nil
	return nil
}

type reportRepo Storage

func (r *reportRepo) Save(ctx context.Context, report *domain.UnresolvedReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *reportRepo) List(ctx context.Context) ([]*domain.UnresolvedReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.UnresolvedReport, 0, len(r.reports))
	for i := len(r.reports) - 1; i >= 0; i-- {
		out = append(out, r.reports[i])
	}
	return out, nil
}
