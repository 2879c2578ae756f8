// Package regression orders analyzer findings and computes per-rule regressions
// between a before and an after snapshot of a file.
package regression

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/ludo-technologies/jsgate/domain"
)

// CompareViolations orders violation instances for display: severity descending,
// then rule id, line and column ascending, then message.
// A severity outside 1..5 counts as unknown, the lowest precedence. Lines and
// columns are 1-based; 0 or below is unknown and sorts after every known
// position of the same bucket.
func CompareViolations(a, b domain.Violation) int {
	if c := cmp.Compare(severityKey(b.Severity), severityKey(a.Severity)); c != 0 {
		return c
	}
	if c := strings.Compare(a.RuleID, b.RuleID); c != 0 {
		return c
	}
	if c := cmp.Compare(positionKey(a.Line), positionKey(b.Line)); c != 0 {
		return c
	}
	if c := cmp.Compare(positionKey(a.Column), positionKey(b.Column)); c != 0 {
		return c
	}
	return strings.Compare(a.Message, b.Message)
}

// SortViolations returns a sorted copy; the input slice is left untouched
func SortViolations(violations []domain.Violation) []domain.Violation {
	sorted := slices.Clone(violations)
	slices.SortStableFunc(sorted, CompareViolations)
	return sorted
}

// CompareRegressions orders regressed rules: severity descending, fewest required
// fixes first, then rule id.
func CompareRegressions(a, b domain.Regression) int {
	if c := cmp.Compare(severityKey(b.Severity), severityKey(a.Severity)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.MinFixesRequired, b.MinFixesRequired); c != 0 {
		return c
	}
	return strings.Compare(a.RuleID, b.RuleID)
}

// SortRegressions turns a Diff result into ordered regression entries.
// severities is usually built with SeverityIndex over the after snapshot;
// a rule missing from it sorts as severity 0.
func SortRegressions(diff map[string]int, before, after domain.RuleCount, severities map[string]int) []domain.Regression {
	regressions := make([]domain.Regression, 0, len(diff))
	for rule, fixes := range diff {
		regressions = append(regressions, domain.Regression{
			RuleID:           rule,
			Severity:         severities[rule],
			MinFixesRequired: fixes,
			Before:           before.Get(rule),
			After:            after.Get(rule),
		})
	}
	slices.SortFunc(regressions, CompareRegressions)
	return regressions
}

// SeverityIndex maps each rule to the highest severity it was reported with
func SeverityIndex(violations []domain.Violation) map[string]int {
	index := make(map[string]int, len(violations))
	for _, v := range violations {
		if current, ok := index[v.RuleID]; !ok || v.Severity > current {
			index[v.RuleID] = v.Severity
		}
	}
	return index
}

func severityKey(severity int) int {
	if severity < domain.SeverityInfo || severity > domain.SeverityCritical {
		return domain.SeverityUnknown
	}
	return severity
}

func positionKey(pos int) int {
	if pos <= 0 {
		return math.MaxInt
	}
	return pos
}
