package classify

import (
	"strings"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Rule maps a lowercase substring to an error kind. Rules are evaluated
// in order and the first match wins, which matters: raw error text
// frequently matches several patterns (an identity violation also says
// "insert", a missing-object message also mentions the statement).
type Rule struct {
	Substring string
	Kind      domain.ErrorKind
}

// DefaultRules is the ordered rule table covering Oracle (ORA-xxxxx) and
// SQL Server (Msg xxxxx) wording plus driver-level failures. The order is
// part of the classifier contract.
var DefaultRules = []Rule{
	// Identity-column violations.
	{"identity column", domain.ErrKindIdentity},
	{"identity_insert", domain.ErrKindIdentity},
	{"ora-32795", domain.ErrKindIdentity},
	{"generated always", domain.ErrKindIdentity},

	// Missing referenced objects.
	{"invalid object name", domain.ErrKindMissingObject},
	{"could not find stored procedure", domain.ErrKindMissingObject},
	{"does not exist", domain.ErrKindMissingObject},
	{"ora-00942", domain.ErrKindMissingObject},
	{"ora-04043", domain.ErrKindMissingObject},
	{"unknown object", domain.ErrKindMissingObject},

	// Type mismatches.
	{"operand type clash", domain.ErrKindTypeMismatch},
	{"conversion failed when converting", domain.ErrKindTypeMismatch},
	{"cannot convert", domain.ErrKindTypeMismatch},
	{"inconsistent datatypes", domain.ErrKindTypeMismatch},
	{"ora-00932", domain.ErrKindTypeMismatch},

	// Permissions.
	{"permission denied", domain.ErrKindPermission},
	{"permission was denied", domain.ErrKindPermission},
	{"insufficient privileges", domain.ErrKindPermission},
	{"ora-01031", domain.ErrKindPermission},
	{"access denied", domain.ErrKindPermission},

	// Syntax.
	{"incorrect syntax", domain.ErrKindSyntax},
	{"syntax error", domain.ErrKindSyntax},
	{"syntax near", domain.ErrKindSyntax},
	{"ora-00900", domain.ErrKindSyntax},
	{"ora-00907", domain.ErrKindSyntax},
	{"unexpected token", domain.ErrKindSyntax},

	// Timeouts (driver or context wording).
	{"timeout expired", domain.ErrKindTimeout},
	{"context deadline exceeded", domain.ErrKindTimeout},
	{"i/o timeout", domain.ErrKindTimeout},
	{"ora-01013", domain.ErrKindTimeout},
	{"query timeout", domain.ErrKindTimeout},
}

// Classifier maps raw error text to the error taxonomy. Zero value is not
// usable; construct with New or NewWithRules.
type Classifier struct {
	rules []Rule
}

// New returns a classifier with the default rule table.
func New() *Classifier {
	return NewWithRules(DefaultRules)
}

// NewWithRules returns a classifier over a caller-supplied ordered table.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the kind of the first matching rule, or Unknown.
// Pure: identical input always yields the identical kind.
func (c *Classifier) Classify(raw string) domain.ErrorKind {
	s := strings.ToLower(raw)
	for _, r := range c.rules {
		if strings.Contains(s, r.Substring) {
			return r.Kind
		}
	}
	return domain.ErrKindUnknown
}
