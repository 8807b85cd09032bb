package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	memstore "github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/storage/memory"
	memmgr "github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/migration/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =============================================================================
// Mock collaborators
// =============================================================================

type mockSource struct {
	ddl string
	err error
}

func (m *mockSource) FetchDDL(ctx context.Context, obj *domain.MigrationObject) (string, error) {
	return m.ddl, m.err
}

type mockConverter struct {
	result *domain.ConversionResult
	err    error
}

func (m *mockConverter) Convert(ctx context.Context, obj *domain.MigrationObject) (*domain.ConversionResult, error) {
	return m.result, m.err
}

type mockRepairer struct {
	status   domain.ObjectStatus
	attempts []domain.DeploymentAttempt
	err      error
	calls    int
}

func (m *mockRepairer) Repair(ctx context.Context, obj *domain.MigrationObject, converted string) (domain.ObjectStatus, []domain.DeploymentAttempt, error) {
	m.calls++
	return m.status, m.attempts, m.err
}

type mockMetadata struct {
	meta  *domain.ObjectMetadata
	err   error
	calls int
}

func (m *mockMetadata) Describe(ctx context.Context, obj *domain.MigrationObject) (*domain.ObjectMetadata, error) {
	m.calls++
	return m.meta, m.err
}

// =============================================================================
// Fixtures
// =============================================================================

func successAttempt(index int) domain.DeploymentAttempt {
	return domain.DeploymentAttempt{Index: index, Outcome: domain.OutcomeSuccess}
}

func failedAttempt(index int, raw string, kind domain.ErrorKind) domain.DeploymentAttempt {
	return domain.DeploymentAttempt{Index: index, Error: raw, ErrorKind: kind, Outcome: domain.OutcomeFailed}
}

type fixture struct {
	orch    *Orchestrator
	mem     *memmgr.Manager
	store   *memstore.Storage
	meta    *mockMetadata
	repairs *mockRepairer
}

func newFixture(repairs *mockRepairer) *fixture {
	store := memstore.New()
	mem := memmgr.NewManager(store.StoreRepo(), testLogger(), 1)
	meta := &mockMetadata{meta: &domain.ObjectMetadata{
		Name: "dbo.Orders",
		Kind: domain.KindTable,
		Columns: []domain.ColumnInfo{
			{Name: "id", DataType: "int", Identity: true},
			{Name: "total", DataType: "decimal"},
		},
	}}

	orch := New(
		&mockSource{ddl: "CREATE TABLE orders (id NUMBER)"},
		&mockConverter{result: &domain.ConversionResult{Tool: domain.ToolPrimary, Text: "CREATE TABLE Orders (id INT IDENTITY)"}},
		repairs,
		meta,
		mem,
		store.ReportRepo(),
		testLogger(),
	)
	return &fixture{orch: orch, mem: mem, store: store, meta: meta, repairs: repairs}
}

func newTableObject() *domain.MigrationObject {
	return domain.NewObject("SALES", "ORDERS", domain.KindTable)
}

// =============================================================================
// Tests
// =============================================================================

func TestRun_HappyPath(t *testing.T) {
	f := newFixture(&mockRepairer{
		status:   domain.StatusDeployed,
		attempts: []domain.DeploymentAttempt{successAttempt(1)},
	})
	obj := newTableObject()

	res, err := f.orch.Run(context.Background(), obj)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Status != domain.StatusDeployed || obj.Status != domain.StatusDeployed {
		t.Errorf("status = %s / %s, want deployed", res.Status, obj.Status)
	}
	if obj.SourceText == "" {
		t.Error("source text should be fetched")
	}

	// Metadata merged into memory.
	doc := f.mem.Document()
	if _, ok := doc.Schemas["SALES.ORDERS"]; !ok {
		t.Error("schema section not updated after deploy")
	}
	if cols := doc.IdentityColumns["SALES.ORDERS"]; len(cols) != 1 || cols[0] != "id" {
		t.Errorf("identity columns = %v, want [id]", cols)
	}
	if doc.TableMappings["SALES.ORDERS"] != "dbo.Orders" {
		t.Errorf("table mapping = %q, want dbo.Orders", doc.TableMappings["SALES.ORDERS"])
	}

	// Memory flushed after the object.
	if _, err := f.store.StoreRepo().Load(context.Background()); err != nil {
		t.Errorf("memory not flushed after object: %v", err)
	}

	if reports, _ := f.store.ReportRepo().List(context.Background()); len(reports) != 0 {
		t.Errorf("no unresolved report expected, got %d", len(reports))
	}
}

func TestRun_ExhaustionPersistsReport(t *testing.T) {
	attempts := []domain.DeploymentAttempt{
		failedAttempt(1, "incorrect syntax near A", domain.ErrKindSyntax),
		failedAttempt(2, "incorrect syntax near B", domain.ErrKindSyntax),
		failedAttempt(3, "incorrect syntax near C", domain.ErrKindSyntax),
	}
	f := newFixture(&mockRepairer{status: domain.StatusUnresolved, attempts: attempts})
	obj := newTableObject()

	res, err := f.orch.Run(context.Background(), obj)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Status != domain.StatusUnresolved || obj.Status != domain.StatusUnresolved {
		t.Errorf("status = %s / %s, want unresolved", res.Status, obj.Status)
	}
	if res.ReportID == "" {
		t.Error("unresolved result must carry a report id")
	}

	reports, err := f.store.ReportRepo().List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected exactly 1 report, got %d", len(reports))
	}
	rep := reports[0]
	if rep.ID != res.ReportID {
		t.Errorf("report id mismatch: %s vs %s", rep.ID, res.ReportID)
	}
	if len(rep.Attempts) != 3 {
		t.Errorf("report should contain all 3 attempts, got %d", len(rep.Attempts))
	}
	if rep.FinalError != "incorrect syntax near C" {
		t.Errorf("final error = %q", rep.FinalError)
	}
	if f.meta.calls != 0 {
		t.Error("metadata refresh must not run for unresolved objects")
	}
}

func TestRun_ReviewRejectsEmptyConversion(t *testing.T) {
	repairs := &mockRepairer{}
	f := newFixture(repairs)
	f.orch.convert = &mockConverter{result: &domain.ConversionResult{Tool: domain.ToolFallback, Text: "  \n"}}
	obj := newTableObject()

	res, err := f.orch.Run(context.Background(), obj)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Status != domain.StatusUnresolved {
		t.Errorf("status = %s, want unresolved", res.Status)
	}
	if len(res.Attempts) != 0 {
		t.Errorf("review rejection must not consume attempts, got %d", len(res.Attempts))
	}
	if repairs.calls != 0 {
		t.Error("repair loop must not run on review rejection")
	}

	reports, _ := f.store.ReportRepo().List(context.Background())
	if len(reports) != 1 {
		t.Fatalf("expected a zero-attempt report, got %d reports", len(reports))
	}
}

func TestRun_ReviewRejectsTableRowData(t *testing.T) {
	f := newFixture(&mockRepairer{})
	f.orch.convert = &mockConverter{result: &domain.ConversionResult{
		Tool: domain.ToolFallback,
		Text: "CREATE TABLE Orders (id INT);\nINSERT INTO Orders VALUES (1);",
	}}
	obj := newTableObject()

	res, err := f.orch.Run(context.Background(), obj)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Status != domain.StatusUnresolved {
		t.Errorf("status = %s, want unresolved", res.Status)
	}
}

func TestRun_ConversionFailureIsAbsorbed(t *testing.T) {
	f := newFixture(&mockRepairer{})
	f.orch.convert = &mockConverter{err: errors.New("both converters down")}
	obj := newTableObject()

	res, err := f.orch.Run(context.Background(), obj)
	if err != nil {
		t.Fatalf("per-object failure must not escape, got %v", err)
	}
	if res.Status != domain.StatusUnresolved {
		t.Errorf("status = %s, want unresolved", res.Status)
	}
}

func TestRun_RepairingTransitionOnFirstFailure(t *testing.T) {
	f := newFixture(&mockRepairer{
		status: domain.StatusDeployed,
		attempts: []domain.DeploymentAttempt{
			failedAttempt(1, "permission denied", domain.ErrKindPermission),
			successAttempt(2),
		},
	})
	obj := newTableObject()

	res, err := f.orch.Run(context.Background(), obj)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Status != domain.StatusDeployed {
		t.Errorf("status = %s, want deployed", res.Status)
	}
}

func TestRunBatch_Summary(t *testing.T) {
	f := newFixture(&mockRepairer{
		status:   domain.StatusDeployed,
		attempts: []domain.DeploymentAttempt{successAttempt(1)},
	})

	objects := []*domain.MigrationObject{
		newTableObject(),
		domain.NewObject("SALES", "CUSTOMERS", domain.KindTable),
		domain.NewObject("SALES", "CALC_TAX", domain.KindProcedure),
	}

	summary := f.orch.RunBatch(context.Background(), objects)
	if summary.Cancelled {
		t.Error("summary should not be cancelled")
	}
	if summary.Counts[domain.KindTable].Migrated != 2 {
		t.Errorf("table migrated = %d, want 2", summary.Counts[domain.KindTable].Migrated)
	}
	if summary.Counts[domain.KindProcedure].Migrated != 1 {
		t.Errorf("procedure migrated = %d, want 1", summary.Counts[domain.KindProcedure].Migrated)
	}
	if len(summary.Failed) != 0 {
		t.Errorf("expected no failures, got %+v", summary.Failed)
	}
}

func TestRunBatch_FailedObjectsPointAtReports(t *testing.T) {
	f := newFixture(&mockRepairer{
		status:   domain.StatusUnresolved,
		attempts: []domain.DeploymentAttempt{failedAttempt(1, "does not exist", domain.ErrKindMissingObject)},
	})

	summary := f.orch.RunBatch(context.Background(), []*domain.MigrationObject{newTableObject()})
	if summary.Counts[domain.KindTable].Failed != 1 {
		t.Fatalf("table failed = %d, want 1", summary.Counts[domain.KindTable].Failed)
	}
	if len(summary.Failed) != 1 || summary.Failed[0].ReportID == "" {
		t.Errorf("failed entry must point at its report: %+v", summary.Failed)
	}
}

func TestRunBatch_CancelledBetweenObjects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFixture(&mockRepairer{status: domain.StatusDeployed})
	summary := f.orch.RunBatch(ctx, []*domain.MigrationObject{newTableObject()})

	if !summary.Cancelled {
		t.Error("summary should be marked cancelled")
	}
	if f.repairs.calls != 0 {
		t.Error("no object should be processed after cancellation")
	}
}
