package regression

import "github.com/ludo-technologies/jsgate/domain"

// CountByRule tallies violations per rule id. Rules without occurrences are absent.
func CountByRule(violations []domain.Violation) domain.RuleCount {
	counts := make(domain.RuleCount)
	for _, v := range violations {
		counts[v.RuleID]++
	}
	return counts
}

// Diff returns, for every rule of after whose count exceeds before, the minimum
// number of fixes needed to get back to the baseline. Only after's rules are
// considered: a rule fixed entirely can never regress. Equal inputs yield an
// empty map.
func Diff(before, after domain.RuleCount) map[string]int {
	diff := make(map[string]int)
	for rule, count := range after {
		if delta := count - before.Get(rule); delta > 0 {
			diff[rule] = delta
		}
	}
	return diff
}

// Compare runs the whole progressive pipeline over two snapshots of one file
// and returns the ordered regressions, empty when nothing got worse.
func Compare(before, after []domain.Violation) []domain.Regression {
	beforeCounts := CountByRule(before)
	afterCounts := CountByRule(after)

	diff := Diff(beforeCounts, afterCounts)
	if len(diff) == 0 {
		return nil
	}

	return SortRegressions(diff, beforeCounts, afterCounts, SeverityIndex(after))
}
