package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// SolutionProvenance records where a stored fix originally came from.
type SolutionProvenance string

const (
	ProvenanceMemory     SolutionProvenance = "memory"
	ProvenanceWebSearch  SolutionProvenance = "web-search"
	ProvenanceTranslator SolutionProvenance = "translator"
)

// ErrorSolution maps a normalized error signature to a fix that worked.
// Entries are append-only: newer entries for the same signature come first
// in retrieval order, older entries stay for audit.
type ErrorSolution struct {
	Signature  string             `json:"signature"`
	Solution   string             `json:"solution"`
	Provenance SolutionProvenance `json:"provenance"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// PatternOutcome marks whether a recorded migration attempt succeeded.
type PatternOutcome string

const (
	PatternSuccess PatternOutcome = "success"
	PatternFailure PatternOutcome = "failure"
)

// Pattern is one entry of the cross-object learning log.
type Pattern struct {
	Kind       ObjectKind     `json:"kind"`
	Outcome    PatternOutcome `json:"outcome"`
	Summary    string         `json:"summary"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// maxSignatureLen bounds the canonicalized message part of a signature so
// keys stay stable across drivers that append varying suffixes.
const maxSignatureLen = 160

// Signature builds the normalized lookup key for an error: object kind,
// classified kind, and the canonicalized message joined by ':'.
func Signature(kind ObjectKind, errKind ErrorKind, rawError string) string {
	return string(kind) + ":" + string(errKind) + ":" + CanonicalError(rawError)
}

// CanonicalError normalizes raw error text for signature matching:
// lowercase, quoted identifiers replaced by '?', digit runs replaced by
// '#', whitespace collapsed, capped in length. Deterministic by
// construction.
func CanonicalError(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(s))

	inSpace := false
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '[':
			close := closingQuote(c)
			end := strings.IndexByte(s[i+1:], close)
			if end < 0 {
				// Unterminated quote: keep the rest verbatim.
				b.WriteByte(c)
				i++
				continue
			}
			b.WriteByte('?')
			i += end + 2
			inSpace = false
		case c >= '0' && c <= '9':
			b.WriteByte('#')
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				i++
			}
			inSpace = false
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if unicode.IsSpace(r) {
				if !inSpace {
					b.WriteByte(' ')
					inSpace = true
				}
			} else {
				b.WriteRune(r)
				inSpace = false
			}
			i += size
		}
	}

	out := strings.TrimSpace(b.String())
	if len(out) > maxSignatureLen {
		cut := maxSignatureLen
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

func closingQuote(open byte) byte {
	if open == '[' {
		return ']'
	}
	return open
}
