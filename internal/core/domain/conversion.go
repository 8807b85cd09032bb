package domain

// ConversionTool identifies which converter produced a result.
type ConversionTool string

const (
	ToolPrimary  ConversionTool = "primary"
	ToolFallback ConversionTool = "fallback"
)

// Diagnostic is one message emitted by the primary converter.
type Diagnostic struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ConversionResult is the immutable output of one conversion attempt.
type ConversionResult struct {
	Tool         ConversionTool `json:"tool"`
	Text         string         `json:"text"`
	ErrorCount   int            `json:"error_count"`
	WarningCount int            `json:"warning_count"`
	Diagnostics  []Diagnostic   `json:"diagnostics,omitempty"`
}
