package translate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// rowDataPattern matches INSERT ... VALUES statements carrying literal
// rows. Table DDL never legitimately contains one; procedural code may,
// so the guard applies to Table payloads only.
var rowDataPattern = regexp.MustCompile(`(?is)\binsert\s+into\s+\S+\s*(?:\([^)]*\))?\s*values\s*\(`)

// ContainsRowData reports whether text carries row-level values.
func ContainsRowData(text string) bool {
	return rowDataPattern.MatchString(text)
}

// CheckPayload enforces the boundary invariant: no payload handed to the
// fallback translator for a Table object may contain row-level data.
// A violation is a payload-construction bug, not a retryable condition.
func CheckPayload(kind domain.ObjectKind, parts ...string) error {
	if kind != domain.KindTable {
		return nil
	}
	for _, p := range parts {
		if ContainsRowData(p) {
			return fmt.Errorf("%w: table payload", domain.ErrRowData)
		}
	}
	return nil
}

// Sanitize normalizes converter or translator output into deployable
// statement text: markdown fences stripped, surrounding whitespace and
// trailing statement separators trimmed.
func Sanitize(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "/")
	return strings.TrimSpace(s)
}
