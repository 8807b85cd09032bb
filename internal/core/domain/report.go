package domain

import "time"

// MemorySnapshot captures the shared-memory context relevant to one
// object at the moment it was given up on.
type MemorySnapshot struct {
	Solutions    []ErrorSolution   `json:"solutions,omitempty"`
	Patterns     []Pattern         `json:"patterns,omitempty"`
	Schema       *ObjectMetadata   `json:"schema,omitempty"`
	TableMapping map[string]string `json:"table_mappings,omitempty"`
}

// UnresolvedReport is the durable record of an object that exhausted its
// repair budget. Created exactly once per such object, never mutated.
type UnresolvedReport struct {
	ID         string              `json:"id"`
	ObjectName string              `json:"object_name"`
	Schema     string              `json:"schema"`
	Kind       ObjectKind          `json:"kind"`
	Attempts   []DeploymentAttempt `json:"attempts"`
	FinalError string              `json:"final_error"`
	Memory     MemorySnapshot      `json:"memory"`
	CreatedAt  time.Time           `json:"created_at"`
}

// KindCount aggregates per-kind outcomes for the run summary.
type KindCount struct {
	Migrated int `json:"migrated"`
	Failed   int `json:"failed"`
}

// FailedObject points the summary reader at the unresolved report.
type FailedObject struct {
	Object   string     `json:"object"`
	Kind     ObjectKind `json:"kind"`
	ReportID string     `json:"report_id"`
}

// RunSummary is the user-visible outcome of a batch.
type RunSummary struct {
	Counts    map[ObjectKind]*KindCount `json:"counts"`
	Failed    []FailedObject            `json:"failed,omitempty"`
	Cancelled bool                      `json:"cancelled,omitempty"`
	StartedAt time.Time                 `json:"started_at"`
	Duration  time.Duration             `json:"duration"`
}

// NewRunSummary returns a summary with counters ready for every kind.
func NewRunSummary() *RunSummary {
	s := &RunSummary{
		Counts:    make(map[ObjectKind]*KindCount),
		StartedAt: time.Now(),
	}
	for _, k := range MigrationOrder {
		s.Counts[k] = &KindCount{}
	}
	return s
}

// Record tallies one terminal object.
func (s *RunSummary) Record(kind ObjectKind, status ObjectStatus, reportID, object string) {
	c, ok := s.Counts[kind]
	if !ok {
		c = &KindCount{}
		s.Counts[kind] = c
	}
	if status == StatusDeployed {
		c.Migrated++
		return
	}
	c.Failed++
	s.Failed = append(s.Failed, FailedObject{Object: object, Kind: kind, ReportID: reportID})
}
