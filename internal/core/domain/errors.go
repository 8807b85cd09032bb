package domain

import "errors"

// ErrorKind is the classified category of a deployment failure.
type ErrorKind string

const (
	ErrKindIdentity      ErrorKind = "identity-column"
	ErrKindMissingObject ErrorKind = "missing-object"
	ErrKindTypeMismatch  ErrorKind = "type-mismatch"
	ErrKindPermission    ErrorKind = "permission"
	ErrKindSyntax        ErrorKind = "syntax"
	ErrKindTimeout       ErrorKind = "timeout"
	ErrKindUnknown       ErrorKind = "unknown"
)

var (
	// ErrConnectivity marks a failure to reach the source or target store
	// at run start. It is the only error fatal to a whole batch.
	ErrConnectivity = errors.New("cannot reach database")

	// ErrConversion marks a primary converter failure. It triggers the
	// fallback translator and does not consume repair attempts.
	ErrConversion = errors.New("primary conversion failed")

	// ErrRowData is returned when a payload bound for the fallback
	// translator contains row-level table data. Hitting it indicates a
	// bug in payload construction, not a retryable runtime condition.
	ErrRowData = errors.New("row-level data in translator payload")

	// ErrEmptyConversion is returned when both converters produce no
	// usable statement text for an object.
	ErrEmptyConversion = errors.New("conversion produced no statement text")
)
