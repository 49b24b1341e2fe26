package analysis

import "time"

// AnalysisID identifier type
type AnalysisID string

// Mode enum: the output contract the provider is instructed to follow.
type Mode string

const (
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Valid reports whether m is a known output mode.
func (m Mode) Valid() bool {
	return m == ModeMarkdown || m == ModeJSON
}

// Analysis represents one generated analysis stored for auditing and retrieval
type Analysis struct {
	ID         AnalysisID `json:"id"`
	Mode       Mode       `json:"mode"`
	Input      string     `json:"input"`
	Result     string     `json:"result"` // raw provider output (markdown or JSON string)
	ArchiveURL string     `json:"archive_url,omitempty"`
	DurationMS int64      `json:"duration_ms"`
	CreatedAt  time.Time  `json:"created_at"`
}
