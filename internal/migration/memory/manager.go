package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage"
)

// Manager owns the shared-memory document for a run: all reads and
// mutations go through it, and it decides when the document is flushed
// back to the repository. A failed flush degrades the manager to
// in-memory-only for the rest of the session instead of failing the run.
type Manager struct {
	repo       storage.StoreRepository
	log        *slog.Logger
	flushEvery int

	mu       sync.RWMutex
	doc      *domain.MemoryDocument
	pending  int
	degraded bool
}

// NewManager creates a manager over the given repository. flushEvery
// controls how many completed objects may accumulate before a flush;
// values below 1 flush after every object.
func NewManager(repo storage.StoreRepository, log *slog.Logger, flushEvery int) *Manager {
	if flushEvery < 1 {
		flushEvery = 1
	}
	return &Manager{
		repo:       repo,
		log:        log,
		flushEvery: flushEvery,
		doc:        domain.NewMemoryDocument(),
	}
}

// Load reads the persisted document. A missing document starts empty.
func (m *Manager) Load(ctx context.Context) error {
	doc, err := m.repo.Load(ctx)
	if errors.Is(err, storage.ErrStoreNotFound) {
		m.log.Info("no persisted memory store, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load memory store: %w", err)
	}

	m.mu.Lock()
	m.doc = doc
	m.mu.Unlock()
	return nil
}

// ObjectDone marks one object as completed and flushes when the
// configured batch size is reached.
func (m *Manager) ObjectDone(ctx context.Context) {
	m.mu.Lock()
	m.pending++
	due := m.pending >= m.flushEvery
	m.mu.Unlock()

	if due {
		m.Flush(ctx)
	}
}

// Flush persists the current document. Persistence failures are logged
// and permanently degrade the manager to in-memory-only.
func (m *Manager) Flush(ctx context.Context) {
	m.mu.Lock()
	if m.degraded {
		m.mu.Unlock()
		return
	}
	snapshot := m.doc.Clone()
	m.pending = 0
	m.mu.Unlock()

	if err := m.repo.Persist(ctx, snapshot); err != nil {
		m.mu.Lock()
		m.degraded = true
		m.mu.Unlock()
		m.log.Warn("memory store flush failed, continuing in-memory only", "error", err)
	}
}

// Degraded reports whether persistence has been abandoned for the session.
func (m *Manager) Degraded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.degraded
}

// GetSolutions returns stored solutions for a signature, most recent
// first, capped at limit.
func (m *Manager) GetSolutions(signature string, limit int) []domain.ErrorSolution {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.ErrorSolution
	for i := len(m.doc.ErrorSolutions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.doc.ErrorSolutions[i].Signature == signature {
			out = append(out, m.doc.ErrorSolutions[i])
		}
	}
	return out
}

// AppendSolution records a new solution. Older entries for the same
// signature are kept for audit; retrieval order favors this one.
func (m *Manager) AppendSolution(sol domain.ErrorSolution) {
	if sol.RecordedAt.IsZero() {
		sol.RecordedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.doc.ErrorSolutions = append(m.doc.ErrorSolutions, sol)
	m.mu.Unlock()
}

// AppendPattern records one outcome in the learning log.
func (m *Manager) AppendPattern(p domain.Pattern) {
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.doc.Patterns = append(m.doc.Patterns, p)
	m.mu.Unlock()
}

// RecentPatterns returns the most recent patterns of the given kind and
// outcome, newest first, capped at limit.
func (m *Manager) RecentPatterns(kind domain.ObjectKind, outcome domain.PatternOutcome, limit int) []domain.Pattern {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Pattern
	for i := len(m.doc.Patterns) - 1; i >= 0 && len(out) < limit; i-- {
		p := m.doc.Patterns[i]
		if p.Kind == kind && p.Outcome == outcome {
			out = append(out, p)
		}
	}
	return out
}

// UpsertSchema stores the refreshed description of a deployed object,
// keyed by its qualified name.
func (m *Manager) UpsertSchema(name string, meta domain.ObjectMetadata) {
	m.mu.Lock()
	m.doc.Schemas[name] = meta
	m.mu.Unlock()
}

// SetIdentityColumns records the identity columns of a table.
func (m *Manager) SetIdentityColumns(name string, cols []string) {
	m.mu.Lock()
	if len(cols) == 0 {
		delete(m.doc.IdentityColumns, name)
	} else {
		m.doc.IdentityColumns[name] = cols
	}
	m.mu.Unlock()
}

// SetTableMapping records a source-to-target table name mapping.
func (m *Manager) SetTableMapping(source, target string) {
	m.mu.Lock()
	m.doc.TableMappings[source] = target
	m.mu.Unlock()
}

// Snapshot captures the memory context relevant to one object: solutions
// for the signatures it hit, recent patterns of its kind, its schema
// entry and table mapping if present.
func (m *Manager) Snapshot(name string, kind domain.ObjectKind, signatures []string) domain.MemorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := domain.MemorySnapshot{}
	for _, sig := range signatures {
		for i := len(m.doc.ErrorSolutions) - 1; i >= 0; i-- {
			if m.doc.ErrorSolutions[i].Signature == sig {
				snap.Solutions = append(snap.Solutions, m.doc.ErrorSolutions[i])
			}
		}
	}
	for i := len(m.doc.Patterns) - 1; i >= 0 && len(snap.Patterns) < 10; i-- {
		if m.doc.Patterns[i].Kind == kind {
			snap.Patterns = append(snap.Patterns, m.doc.Patterns[i])
		}
	}
	if meta, ok := m.doc.Schemas[name]; ok {
		snap.Schema = &meta
	}
	if target, ok := m.doc.TableMappings[name]; ok {
		snap.TableMapping = map[string]string{name: target}
	}
	return snap
}

// Document returns a copy of the current document, for the status
// command and tests.
func (m *Manager) Document() *domain.MemoryDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}
