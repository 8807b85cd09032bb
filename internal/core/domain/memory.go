package domain

import "time"

// ColumnInfo describes one column of a deployed object.
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	Identity bool   `json:"identity,omitempty"`
}

// ObjectMetadata is the structured description returned by the target
// after a successful deploy: columns, identity flags, constraints.
type ObjectMetadata struct {
	Name        string       `json:"name"`
	Kind        ObjectKind   `json:"kind"`
	Columns     []ColumnInfo `json:"columns,omitempty"`
	Constraints []string     `json:"constraints,omitempty"`
	RefreshedAt time.Time    `json:"refreshed_at"`
}

// IdentityColumns lists the identity column names of the object.
func (m *ObjectMetadata) IdentityColumns() []string {
	var cols []string
	for _, c := range m.Columns {
		if c.Identity {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// MemoryDocument is the durable shared-memory aggregate. It is loaded
// wholesale at process start and flushed wholesale after mutation; the
// JSON shape below is the persisted document format for both backends.
type MemoryDocument struct {
	Schemas         map[string]ObjectMetadata `json:"schemas"`
	IdentityColumns map[string][]string       `json:"identity_columns"`
	TableMappings   map[string]string         `json:"table_mappings"`
	ErrorSolutions  []ErrorSolution           `json:"error_solutions"`
	Patterns        []Pattern                 `json:"patterns"`
}

// NewMemoryDocument returns an empty but valid document: every section
// initialized, nothing nil.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		Schemas:         make(map[string]ObjectMetadata),
		IdentityColumns: make(map[string][]string),
		TableMappings:   make(map[string]string),
		ErrorSolutions:  []ErrorSolution{},
		Patterns:        []Pattern{},
	}
}

// Normalize repairs nil sections after decoding a partial or legacy
// document so callers never see nil maps.
func (d *MemoryDocument) Normalize() {
	if d.Schemas == nil {
		d.Schemas = make(map[string]ObjectMetadata)
	}
	if d.IdentityColumns == nil {
		d.IdentityColumns = make(map[string][]string)
	}
	if d.TableMappings == nil {
		d.TableMappings = make(map[string]string)
	}
	if d.ErrorSolutions == nil {
		d.ErrorSolutions = []ErrorSolution{}
	}
	if d.Patterns == nil {
		d.Patterns = []Pattern{}
	}
}

// Clone returns a deep copy, used for snapshots and atomic persistence.
func (d *MemoryDocument) Clone() *MemoryDocument {
	out := NewMemoryDocument()
	for k, v := range d.Schemas {
		out.Schemas[k] = v
	}
	for k, v := range d.IdentityColumns {
		cols := make([]string, len(v))
		copy(cols, v)
		out.IdentityColumns[k] = cols
	}
	for k, v := range d.TableMappings {
		out.TableMappings[k] = v
	}
	out.ErrorSolutions = append(out.ErrorSolutions, d.ErrorSolutions...)
	out.Patterns = append(out.Patterns, d.Patterns...)
	return out
}
