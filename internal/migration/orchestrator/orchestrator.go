package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/translate"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/metrics"
)

// Source fetches object definitions from the source schema.
type Source interface {
	FetchDDL(ctx context.Context, obj *domain.MigrationObject) (string, error)
}

// Converter chooses a converter and produces the target text.
type Converter interface {
	Convert(ctx context.Context, obj *domain.MigrationObject) (*domain.ConversionResult, error)
}

// Repairer deploys and repairs within the attempt budget.
type Repairer interface {
	Repair(ctx context.Context, obj *domain.MigrationObject, converted string) (domain.ObjectStatus, []domain.DeploymentAttempt, error)
}

// MetadataRefresher describes a deployed object from the target catalog.
type MetadataRefresher interface {
	Describe(ctx context.Context, obj *domain.MigrationObject) (*domain.ObjectMetadata, error)
}

// MemoryStore is the slice of the shared memory the orchestrator
// touches.
type MemoryStore interface {
	UpsertSchema(name string, meta domain.ObjectMetadata)
	SetIdentityColumns(name string, cols []string)
	SetTableMapping(source, target string)
	Snapshot(name string, kind domain.ObjectKind, signatures []string) domain.MemorySnapshot
	ObjectDone(ctx context.Context)
}

// Result is the terminal outcome of one object.
type Result struct {
	Status   domain.ObjectStatus
	Attempts []domain.DeploymentAttempt
	ReportID string
}

// Orchestrator drives the per-object state machine and the batch run.
// Per-object failures are absorbed into terminal statuses; the only
// errors it returns are context cancellation, which discards the
// in-flight object.
type Orchestrator struct {
	source   Source
	convert  Converter
	repair   Repairer
	metadata MetadataRefresher
	memory   MemoryStore
	reports  storage.ReportRepository
	log      *slog.Logger
}

// New creates an orchestrator.
func New(
	source Source,
	convert Converter,
	repair Repairer,
	metadata MetadataRefresher,
	memory MemoryStore,
	reports storage.ReportRepository,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:   source,
		convert:  convert,
		repair:   repair,
		metadata: metadata,
		memory:   memory,
		reports:  reports,
		log:      log,
	}
}

// Run processes one object to a terminal status.
func (o *Orchestrator) Run(ctx context.Context, obj *domain.MigrationObject) (Result, error) {
	log := o.log.With("object", obj.QualifiedName(), "kind", obj.Kind)

	// Fetch.
	if obj.Status == domain.StatusNew {
		if obj.SourceText == "" {
			text, err := o.source.FetchDDL(ctx, obj)
			if err != nil {
				if ctx.Err() != nil {
					return Result{Status: obj.Status}, ctx.Err()
				}
				log.Error("fetch failed", "error", err)
				return o.giveUp(ctx, obj, nil, fmt.Sprintf("fetch failed: %v", err))
			}
			obj.SourceText = text
		}
		obj.FetchedAt = time.Now().UTC()
		o.advance(obj, domain.StatusFetched)
	}

	// Convert.
	result, err := o.convert.Convert(ctx, obj)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Status: obj.Status}, ctx.Err()
		}
		log.Error("conversion failed", "error", err)
		return o.giveUp(ctx, obj, nil, fmt.Sprintf("conversion failed: %v", err))
	}
	o.advance(obj, domain.StatusConverted)
	log.Info("converted", "tool", result.Tool, "errors", result.ErrorCount, "warnings", result.WarningCount)

	// Review: sanitize the output, reject empties, and hold the
	// row-data boundary for tables. A rejected review consumes no
	// repair attempts.
	text := translate.Sanitize(result.Text)
	if text == "" {
		log.Error("review rejected empty conversion output")
		return o.giveUp(ctx, obj, nil, domain.ErrEmptyConversion.Error())
	}
	if obj.Kind == domain.KindTable && translate.ContainsRowData(text) {
		log.Error("review rejected table conversion with row data")
		return o.giveUp(ctx, obj, nil, domain.ErrRowData.Error())
	}
	obj.TargetText = text
	o.advance(obj, domain.StatusReviewed)

	// Deploy and repair.
	final, attempts, err := o.repair.Repair(ctx, obj, text)
	if err != nil {
		// Cancelled: the in-flight attempt is discarded, nothing is
		// recorded for this object.
		return Result{Status: obj.Status, Attempts: attempts}, err
	}

	if len(attempts) > 0 && attempts[0].Outcome == domain.OutcomeFailed {
		o.advance(obj, domain.StatusRepairing)
	}

	switch final {
	case domain.StatusDeployed:
		o.advance(obj, domain.StatusDeployed)
		o.refreshMetadata(ctx, obj)
		o.memory.ObjectDone(ctx)
		metrics.ObjectsProcessed.WithLabelValues(string(obj.Kind), string(obj.Status)).Inc()
		log.Info("deployed", "attempts", len(attempts))
		return Result{Status: obj.Status, Attempts: attempts}, nil

	default:
		finalErr := ""
		if n := len(attempts); n > 0 {
			finalErr = attempts[n-1].Error
		}
		return o.giveUp(ctx, obj, attempts, finalErr)
	}
}

// RunBatch processes objects strictly sequentially in the order given;
// the caller is responsible for dependency ordering. Cancellation stops
// between objects (or discards the one in flight) and marks the summary
// cancelled.
func (o *Orchestrator) RunBatch(ctx context.Context, objects []*domain.MigrationObject) *domain.RunSummary {
	summary := domain.NewRunSummary()
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	for _, obj := range objects {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		res, err := o.Run(ctx, obj)
		if err != nil {
			summary.Cancelled = true
			break
		}
		summary.Record(obj.Kind, res.Status, res.ReportID, obj.QualifiedName())
	}
	return summary
}

// giveUp marks the object unresolved and persists its report.
func (o *Orchestrator) giveUp(ctx context.Context, obj *domain.MigrationObject, attempts []domain.DeploymentAttempt, finalErr string) (Result, error) {
	o.advance(obj, domain.StatusUnresolved)

	signatures := make([]string, 0, len(attempts))
	seen := make(map[string]bool)
	for _, a := range attempts {
		if a.Outcome != domain.OutcomeFailed {
			continue
		}
		sig := domain.Signature(obj.Kind, a.ErrorKind, a.Error)
		if !seen[sig] {
			seen[sig] = true
			signatures = append(signatures, sig)
		}
	}

	report := &domain.UnresolvedReport{
		ID:         uuid.New().String(),
		ObjectName: obj.Name,
		Schema:     obj.Schema,
		Kind:       obj.Kind,
		Attempts:   attempts,
		FinalError: finalErr,
		Memory:     o.memory.Snapshot(obj.QualifiedName(), obj.Kind, signatures),
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.reports.Save(ctx, report); err != nil {
		o.log.Error("failed to persist unresolved report",
			"object", obj.QualifiedName(), "report", report.ID, "error", err)
	}

	o.memory.ObjectDone(ctx)
	metrics.ObjectsProcessed.WithLabelValues(string(obj.Kind), string(obj.Status)).Inc()
	o.log.Warn("object unresolved",
		"object", obj.QualifiedName(), "report", report.ID, "attempts", len(attempts), "error", finalErr)

	return Result{Status: obj.Status, Attempts: attempts, ReportID: report.ID}, nil
}

// refreshMetadata merges the deployed object's description into memory.
// Refresh failures only cost the memory update, never the deployment.
func (o *Orchestrator) refreshMetadata(ctx context.Context, obj *domain.MigrationObject) {
	meta, err := o.metadata.Describe(ctx, obj)
	if err != nil {
		o.log.Warn("metadata refresh failed", "object", obj.QualifiedName(), "error", err)
		return
	}

	name := obj.QualifiedName()
	o.memory.UpsertSchema(name, *meta)
	if obj.Kind == domain.KindTable {
		o.memory.SetIdentityColumns(name, meta.IdentityColumns())
		o.memory.SetTableMapping(name, meta.Name)
	}
}

// advance moves the object forward; a refused transition is a
// programming error in the state machine, worth a loud log but never a
// run abort.
func (o *Orchestrator) advance(obj *domain.MigrationObject, to domain.ObjectStatus) {
	if err := obj.Advance(to); err != nil {
		o.log.Error("status transition refused", "error", err)
		obj.Status = to
	}
}
