package control

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/ops"
)

func TestRenderSummary(t *testing.T) {
	s := domain.NewRunSummary()
	s.Record(domain.KindTable, domain.StatusDeployed, "", "HR.EMPLOYEES")
	s.Record(domain.KindTable, domain.StatusDeployed, "", "HR.DEPARTMENTS")
	s.Record(domain.KindProcedure, domain.StatusUnresolved, "rep-1", "HR.PAY_RUN")
	s.Duration = 1500 * time.Millisecond

	var sb strings.Builder
	renderSummary(&sb, s)
	out := sb.String()

	if !strings.Contains(out, "KIND") {
		t.Errorf("Expected header row, got: %s", out)
	}
	if !strings.Contains(out, "HR.PAY_RUN") {
		t.Errorf("Expected failed object listed, got: %s", out)
	}
	if !strings.Contains(out, "rep-1") {
		t.Errorf("Expected report id listed, got: %s", out)
	}
	if strings.Contains(out, "cancelled") {
		t.Errorf("Did not expect cancellation note, got: %s", out)
	}
}

// Shutting the ops server down cleanly must not log a failure.
func TestServeOps_CleanShutdownLogsNothing(t *testing.T) {
	srv := ops.NewServer(0, nil)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	done := make(chan struct{})
	go func() {
		serveOps(srv, log)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	<-done

	if strings.Contains(buf.String(), "Ops server failed") {
		t.Errorf("clean shutdown logged a failure: %s", buf.String())
	}
}

func TestRenderSummary_Cancelled(t *testing.T) {
	s := domain.NewRunSummary()
	s.Cancelled = true

	var sb strings.Builder
	renderSummary(&sb, s)

	if !strings.Contains(sb.String(), "cancelled") {
		t.Errorf("Expected cancellation note, got: %s", sb.String())
	}
}
