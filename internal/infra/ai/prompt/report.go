package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaVersion is the current JSON report contract version. The contract is
// versioned explicitly so shape changes bump the number instead of drifting.
const SchemaVersion = 1

// Report is the structure the JSON-mode system prompt demands.
type Report struct {
	SchemaVersion int         `json:"schema_version"`
	Title         string      `json:"title"`
	Frameworks    []Framework `json:"frameworks"`
}

type Framework struct {
	Name      string    `json:"name"`
	Rationale string    `json:"rationale"`
	Decision  string    `json:"decision"`
	Sections  []Section `json:"sections"`
}

type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ParseReport parses provider output as a Report and validates it against the
// contract. Providers sometimes wrap JSON in code fences despite instructions,
// so fences are stripped before parsing.
func ParseReport(raw string) (*Report, error) {
	cleaned := StripFences(raw)

	var r Report
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if r.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema_version %d (want %d)", r.SchemaVersion, SchemaVersion)
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil, fmt.Errorf("report title is empty")
	}
	if len(r.Frameworks) == 0 {
		return nil, fmt.Errorf("report has no framework analyses")
	}
	return &r, nil
}

// StripFences removes a surrounding markdown code fence, if present.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	// drop a language tag like "json" on the opening fence
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		first := strings.TrimSpace(t[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}[]") {
			t = t[i+1:]
		}
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
