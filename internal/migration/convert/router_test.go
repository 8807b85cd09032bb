package convert

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/infra/translate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =============================================================================
// Mock collaborators
// =============================================================================

type mockPrimary struct {
	result *domain.ConversionResult
	err    error
	calls  int
}

func (m *mockPrimary) Convert(ctx context.Context, source string, kind domain.ObjectKind) (*domain.ConversionResult, error) {
	m.calls++
	return m.result, m.err
}

type mockTranslator struct {
	text  string
	err   error
	calls int
	reqs  []translate.Request
}

func (m *mockTranslator) Translate(ctx context.Context, req translate.Request) (string, error) {
	m.calls++
	m.reqs = append(m.reqs, req)
	return m.text, m.err
}

type mockPatterns struct {
	patterns []domain.Pattern
}

func (m *mockPatterns) RecentPatterns(kind domain.ObjectKind, outcome domain.PatternOutcome, limit int) []domain.Pattern {
	if len(m.patterns) > limit {
		return m.patterns[:limit]
	}
	return m.patterns
}

func testObject() *domain.MigrationObject {
	obj := domain.NewObject("HR", "PAY_CALC", domain.KindProcedure)
	obj.SourceText = "CREATE OR REPLACE PROCEDURE pay_calc AS BEGIN NULL; END;"
	return obj
}

// =============================================================================
// Tests
// =============================================================================

func TestRouter_AcceptsCleanPrimaryResult(t *testing.T) {
	primary := &mockPrimary{result: &domain.ConversionResult{
		Tool: domain.ToolPrimary, Text: "CREATE PROCEDURE pay_calc AS BEGIN RETURN; END",
		ErrorCount: 0, WarningCount: 3,
	}}
	fallback := &mockTranslator{}

	r := NewRouter(primary, fallback, &mockPatterns{}, Config{WarningThreshold: 5}, testLogger())
	result, err := r.Convert(context.Background(), testObject())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if result.Tool != domain.ToolPrimary {
		t.Errorf("expected primary result, got %s", result.Tool)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback should not be called, got %d calls", fallback.calls)
	}
}

func TestRouter_WarningsOverThresholdInvokeFallbackOnce(t *testing.T) {
	// error_count=0, warning_count=7, threshold 5: fallback exactly once.
	primary := &mockPrimary{result: &domain.ConversionResult{
		Tool: domain.ToolPrimary, Text: "noisy", ErrorCount: 0, WarningCount: 7,
	}}
	fallback := &mockTranslator{text: "CREATE PROCEDURE pay_calc AS BEGIN RETURN; END"}

	r := NewRouter(primary, fallback, &mockPatterns{}, Config{WarningThreshold: 5}, testLogger())
	result, err := r.Convert(context.Background(), testObject())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("expected exactly 1 fallback call, got %d", fallback.calls)
	}
	if result.Tool != domain.ToolFallback {
		t.Errorf("expected fallback result, got %s", result.Tool)
	}
}

func TestRouter_PrimaryErrorsInvokeFallback(t *testing.T) {
	primary := &mockPrimary{result: &domain.ConversionResult{
		Tool: domain.ToolPrimary, Text: "partial", ErrorCount: 2,
	}}
	fallback := &mockTranslator{text: "fixed"}

	r := NewRouter(primary, fallback, &mockPatterns{}, Config{}, testLogger())
	if _, err := r.Convert(context.Background(), testObject()); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if fallback.calls != 1 {
		t.Errorf("expected fallback on primary errors, got %d calls", fallback.calls)
	}
}

func TestRouter_PrimaryFailureIsNonFatal(t *testing.T) {
	primary := &mockPrimary{err: domain.ErrConversion}
	fallback := &mockTranslator{text: "recovered"}

	r := NewRouter(primary, fallback, &mockPatterns{}, Config{}, testLogger())
	result, err := r.Convert(context.Background(), testObject())
	if err != nil {
		t.Fatalf("primary tool failure must fall through, got %v", err)
	}
	if result.Text != "recovered" || result.Tool != domain.ToolFallback {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestRouter_FallbackPrimedWithPatterns(t *testing.T) {
	patterns := &mockPatterns{patterns: []domain.Pattern{
		{Kind: domain.KindProcedure, Outcome: domain.PatternSuccess, Summary: "swap NVL for ISNULL"},
		{Kind: domain.KindProcedure, Outcome: domain.PatternSuccess, Summary: "rewrite LOOP as WHILE"},
	}}
	primary := &mockPrimary{err: domain.ErrConversion}
	fallback := &mockTranslator{text: "out"}

	r := NewRouter(primary, fallback, patterns, Config{PatternLimit: 5}, testLogger())
	if _, err := r.Convert(context.Background(), testObject()); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	req := fallback.reqs[0]
	if len(req.Patterns) != 2 {
		t.Fatalf("expected 2 priming patterns, got %d", len(req.Patterns))
	}
	if req.Repair != nil {
		t.Error("fresh conversion request must not carry repair context")
	}
	if req.Kind != domain.KindProcedure {
		t.Errorf("request kind = %s, want procedure", req.Kind)
	}
}

func TestRouter_FallbackFailureReturnsError(t *testing.T) {
	primary := &mockPrimary{err: domain.ErrConversion}
	fallback := &mockTranslator{err: errors.New("llm down")}

	r := NewRouter(primary, fallback, &mockPatterns{}, Config{}, testLogger())
	if _, err := r.Convert(context.Background(), testObject()); err == nil {
		t.Error("expected error when both converters fail")
	}
}
