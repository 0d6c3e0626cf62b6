// ABOUTME: Severity type with ordinal ranking for comparison and batch sorting
// ABOUTME: Ordinal LOW < MEDIUM < HIGH < CRITICAL

package models

// Severity is the ordinal business severity of a failure impact.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Valid reports whether s is one of the four recognized severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank returns the ordinal weight: LOW=1 up to CRITICAL=4.
// Unknown severities rank 0, below LOW.
func (s Severity) Rank() int {
	return severityRank[s]
}

// SortRank returns the batch ordering key: CRITICAL=0 down to LOW=3,
// so more severe results sort first.
func (s Severity) SortRank() int {
	if !s.Valid() {
		return len(severityRank)
	}
	return len(severityRank) - s.Rank()
}
