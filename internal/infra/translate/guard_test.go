package translate

import (
	"errors"
	"strings"
	"testing"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

func TestContainsRowData(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain ddl", "CREATE TABLE orders (id INT NOT NULL)", false},
		{"insert with values", "INSERT INTO orders VALUES (1, 'x')", true},
		{"insert with column list", "insert into orders (id, name) values (1, 'x')", true},
		{"multiline insert", "INSERT INTO orders\n  VALUES\n  (1, 'x')", true},
		{"insert select is not row data", "INSERT INTO orders SELECT * FROM staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsRowData(tt.text); got != tt.want {
				t.Errorf("ContainsRowData(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCheckPayload(t *testing.T) {
	rowData := "INSERT INTO orders VALUES (1, 'x')"

	if err := CheckPayload(domain.KindTable, "CREATE TABLE t (id INT)", rowData); !errors.Is(err, domain.ErrRowData) {
		t.Errorf("expected ErrRowData for table payload, got %v", err)
	}

	// Procedural code legitimately contains INSERT statements.
	if err := CheckPayload(domain.KindProcedure, rowData); err != nil {
		t.Errorf("procedure payload should pass, got %v", err)
	}

	if err := CheckPayload(domain.KindTable, "CREATE TABLE t (id INT)"); err != nil {
		t.Errorf("clean table payload should pass, got %v", err)
	}
}

func TestBuildPrompt_RejectsTableRowData(t *testing.T) {
	_, err := BuildPrompt(Request{
		Source: "CREATE TABLE t (id INT)",
		Kind:   domain.KindTable,
		Repair: &RepairContext{
			CurrentText: "CREATE TABLE t (id INT); INSERT INTO t VALUES (1)",
			RawError:    "boom",
		},
	})
	if !errors.Is(err, domain.ErrRowData) {
		t.Errorf("expected ErrRowData, got %v", err)
	}
}

// Memory-hit solution text is part of the payload and goes through the
// same row-data check as everything else.
func TestBuildPrompt_RejectsTableRowDataInMemoryHits(t *testing.T) {
	_, err := BuildPrompt(Request{
		Source: "CREATE TABLE t (id INT)",
		Kind:   domain.KindTable,
		Repair: &RepairContext{
			CurrentText: "CREATE TABLE t (id INT)",
			RawError:    "boom",
			MemoryHits: []domain.ErrorSolution{
				{Solution: "seed it with INSERT INTO t VALUES (1)"},
			},
		},
	})
	if !errors.Is(err, domain.ErrRowData) {
		t.Errorf("expected ErrRowData, got %v", err)
	}
}

func TestBuildPrompt_RepairIncludesContext(t *testing.T) {
	prompt, err := BuildPrompt(Request{
		Source:  "CREATE OR REPLACE PROCEDURE p AS BEGIN NULL; END;",
		Kind:    domain.KindProcedure,
		Dialect: "SQL Server",
		Repair: &RepairContext{
			CurrentText: "CREATE PROCEDURE p AS BEGIN RETURN; END",
			RawError:    "incorrect syntax near 'RETURN'",
			ErrorKind:   domain.ErrKindSyntax,
			MemoryHits:  []domain.ErrorSolution{{Solution: "use SELECT 1 instead"}},
			SearchHits:  []string{"wrap the body in BEGIN/END"},
		},
	})
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	for _, want := range []string{
		"incorrect syntax near 'RETURN'",
		"use SELECT 1 instead",
		"wrap the body in BEGIN/END",
		"CREATE PROCEDURE p AS BEGIN RETURN; END",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "CREATE TABLE t (id INT)", "CREATE TABLE t (id INT)"},
		{"fenced", "```sql\nCREATE TABLE t (id INT)\n```", "CREATE TABLE t (id INT)"},
		{"fenced no lang", "```\nSELECT 1\n```", "SELECT 1"},
		{"trailing slash", "CREATE PROCEDURE p AS BEGIN END;\n/", "CREATE PROCEDURE p AS BEGIN END;"},
		{"whitespace", "  \n SELECT 1 \n ", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
