package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage"
)

// StoreRepo persists the memory document as one JSON file. Writes go to a
// temp file in the same directory followed by a rename, so a crash leaves
// either the previous document or the new one, never a partial.
type StoreRepo struct {
	path string
	log  *slog.Logger
}

// NewStoreRepo creates a file-backed store repository at path.
func NewStoreRepo(path string, log *slog.Logger) *StoreRepo {
	return &StoreRepo{path: path, log: log}
}

// Load reads the document. Missing file -> ErrStoreNotFound. Corrupt
// content -> empty valid document (logged), not an error: a damaged
// memory file must never abort a run.
func (r *StoreRepo) Load(ctx context.Context) (*domain.MemoryDocument, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, storage.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read memory store: %w", err)
	}

	var doc domain.MemoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		r.log.Warn("memory store is corrupt, starting empty", "path", r.path, "error", err)
		return domain.NewMemoryDocument(), nil
	}
	doc.Normalize()
	return &doc, nil
}

// Persist writes the document atomically.
func (r *StoreRepo) Persist(ctx context.Context, doc *domain.MemoryDocument) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".memory-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace memory store: %w", err)
	}
	return nil
}

// Reset removes the persisted document.
func (r *StoreRepo) Reset(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove memory store: %w", err)
	}
	return nil
}

// ReportRepo writes one JSON file per unresolved object into a directory,
// named OBJECT-TIMESTAMP.json.
type ReportRepo struct {
	dir string
}

// NewReportRepo creates a file-backed report repository under dir.
func NewReportRepo(dir string) *ReportRepo {
	return &ReportRepo{dir: dir}
}

// Save writes the report to its own file.
func (r *ReportRepo) Save(ctx context.Context, report *domain.UnresolvedReport) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json",
		sanitizeName(report.Schema+"."+report.ObjectName),
		report.CreatedAt.UTC().Format("20060102T150405"),
	)
	path := filepath.Join(r.dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

// List reads all report files, most recent first.
func (r *ReportRepo) List(ctx context.Context) ([]*domain.UnresolvedReport, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report dir: %w", err)
	}

	var reports []*domain.UnresolvedReport
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			continue
		}
		var rep domain.UnresolvedReport
		if err := json.Unmarshal(data, &rep); err != nil {
			continue
		}
		reports = append(reports, &rep)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
