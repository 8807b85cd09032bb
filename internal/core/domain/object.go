package domain

import (
	"errors"
	"fmt"
	"time"
)

// ObjectKind identifies the category of a schema object.
type ObjectKind string

const (
	KindTable         ObjectKind = "table"
	KindProcedure     ObjectKind = "procedure"
	KindFunction      ObjectKind = "function"
	KindTrigger       ObjectKind = "trigger"
	KindPackageMember ObjectKind = "package_member"
)

// MigrationOrder lists kinds in the order a batch must process them:
// tables carry the structure everything else references, package members
// are emitted after their package has been decomposed.
var MigrationOrder = []ObjectKind{
	KindTable,
	KindProcedure,
	KindFunction,
	KindTrigger,
	KindPackageMember,
}

// ObjectStatus is the lifecycle state of a migration object.
type ObjectStatus string

const (
	StatusNew        ObjectStatus = "new"
	StatusFetched    ObjectStatus = "fetched"
	StatusConverted  ObjectStatus = "converted"
	StatusReviewed   ObjectStatus = "reviewed"
	StatusDeployed   ObjectStatus = "deployed"
	StatusRepairing  ObjectStatus = "repairing"
	StatusUnresolved ObjectStatus = "unresolved"
)

// ErrInvalidTransition is returned when a status transition is attempted
// that the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidTransitions defines the forward-only object lifecycle.
// Repairing exits only into Deployed or Unresolved.
var ValidTransitions = map[ObjectStatus][]ObjectStatus{
	StatusNew:       {StatusFetched, StatusUnresolved},
	StatusFetched:   {StatusConverted, StatusUnresolved},
	StatusConverted: {StatusReviewed, StatusUnresolved},
	StatusReviewed:  {StatusDeployed, StatusRepairing, StatusUnresolved},
	StatusRepairing: {StatusDeployed, StatusUnresolved},
	// Deployed and Unresolved are terminal.
}

// CanTransition checks if moving from one status to another is allowed.
func CanTransition(from, to ObjectStatus) bool {
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// MigrationObject is one schema object moving through the pipeline.
// It is owned by the orchestrator for the duration of its processing and
// must not be mutated once it reaches a terminal status.
type MigrationObject struct {
	Name       string     `json:"name"`
	Schema     string     `json:"schema"`
	Kind       ObjectKind `json:"kind"`
	SourceText string     `json:"source_text"`
	TargetText string     `json:"target_text"`
	Status     ObjectStatus
	FetchedAt  time.Time
}

// NewObject creates an object in the New state.
func NewObject(schema, name string, kind ObjectKind) *MigrationObject {
	return &MigrationObject{
		Name:   name,
		Schema: schema,
		Kind:   kind,
		Status: StatusNew,
	}
}

// QualifiedName returns "SCHEMA.NAME", the identity used for memory-store
// sections and report filenames.
func (o *MigrationObject) QualifiedName() string {
	if o.Schema == "" {
		return o.Name
	}
	return o.Schema + "." + o.Name
}

// Terminal reports whether the object reached a final status.
func (o *MigrationObject) Terminal() bool {
	return o.Status == StatusDeployed || o.Status == StatusUnresolved
}

// Advance moves the object to the next status, enforcing the lifecycle.
func (o *MigrationObject) Advance(to ObjectStatus) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, o.Status, to, o.QualifiedName())
	}
	o.Status = to
	return nil
}
