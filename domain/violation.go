package domain

import "fmt"

// Severity levels reported by analyzers. Higher is more severe.
const (
	SeverityUnknown  = 0
	SeverityInfo     = 1
	SeverityLow      = 2
	SeverityMedium   = 3
	SeverityHigh     = 4
	SeverityCritical = 5
)

// SeverityName returns the display name of a severity level
func SeverityName(severity int) string {
	switch severity {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Violation is a single analyzer finding. Values are never mutated once produced.
type Violation struct {
	RuleID   string `json:"rule_id" yaml:"rule_id"`
	Severity int    `json:"severity" yaml:"severity"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Message  string `json:"message" yaml:"message"`
}

// String returns a compact representation of the violation
func (v Violation) String() string {
	return fmt.Sprintf("%s(%d) at %d:%d: %s", v.RuleID, v.Severity, v.Line, v.Column, v.Message)
}

// RuleCount maps a rule id to its number of occurrences in one snapshot.
// A rule with no occurrences is absent; readers treat absent and zero alike.
type RuleCount map[string]int

// Get returns the count for a rule, 0 when absent
func (rc RuleCount) Get(rule string) int {
	return rc[rule]
}

// Regression describes a rule whose occurrence count grew between snapshots
type Regression struct {
	RuleID           string `json:"rule_id" yaml:"rule_id"`
	Severity         int    `json:"severity" yaml:"severity"`
	MinFixesRequired int    `json:"min_fixes_required" yaml:"min_fixes_required"`
	Before           int    `json:"before" yaml:"before"`
	After            int    `json:"after" yaml:"after"`
}
