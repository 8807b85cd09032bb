package domain

import "time"

// AttemptOutcome is the result of a single deployment attempt.
type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "success"
	OutcomeFailed  AttemptOutcome = "failed"
)

// DeploymentAttempt records one deploy of an object's current target text.
// Attempts are append-only per object; the list never exceeds the
// configured attempt budget. For a failed attempt, FixApplied holds the
// patched text produced in response (deployed as the next attempt).
type DeploymentAttempt struct {
	ID         string         `json:"id"`
	Index      int            `json:"index"` // 1-based
	Error      string         `json:"error,omitempty"`
	ErrorKind  ErrorKind      `json:"error_kind,omitempty"`
	FixApplied string         `json:"fix_applied,omitempty"`
	Outcome    AttemptOutcome `json:"outcome"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration"`
}
