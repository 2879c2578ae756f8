package analyzer

import (
	"sort"

	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
)

// Rule describes a builtin rule and its defaults
type Rule struct {
	// ID is the unique identifier of the rule
	ID string `json:"id" yaml:"id"`

	// Description is a short description of what the rule checks
	Description string `json:"description" yaml:"description"`

	// Severity is the default severity of violations from this rule
	Severity int `json:"severity" yaml:"severity"`

	// Threshold is the default limit for metric rules, 0 for the others
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

var builtinRules = []Rule{
	{ID: constants.RuleParseError, Description: "Source does not parse", Severity: 5},
	{ID: constants.RuleNoEval, Description: "Disallow eval()", Severity: 5},
	{ID: constants.RuleNoDebugger, Description: "Disallow debugger statements", Severity: 4},
	{ID: constants.RuleNoUnreachable, Description: "Disallow code after return, throw, break or continue", Severity: 4},
	{ID: constants.RuleEqeqeq, Description: "Require === and !==", Severity: 3},
	{ID: constants.RuleMaxComplexity, Description: "Limit cyclomatic complexity per function", Severity: 3, Threshold: 10},
	{ID: constants.RuleMaxDepth, Description: "Limit block nesting depth per function", Severity: 2, Threshold: 4},
	{ID: constants.RuleMaxParams, Description: "Limit the number of function parameters", Severity: 2, Threshold: 5},
	{ID: constants.RuleNoVar, Description: "Require let or const instead of var", Severity: 2},
	{ID: constants.RuleNoEmptyBlock, Description: "Disallow empty block statements", Severity: 1},
	{ID: constants.RuleNoConsole, Description: "Disallow console calls", Severity: 1},
}

// BuiltinRules returns the rule catalog ordered by id
func BuiltinRules() []Rule {
	rules := make([]Rule, len(builtinRules))
	copy(rules, builtinRules)
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// LookupRule returns the catalog entry for id
func LookupRule(id string) (Rule, bool) {
	for _, r := range builtinRules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// ruleSettings is a rule after profile overrides
type ruleSettings struct {
	enabled   bool
	severity  int
	threshold int
}

// ruleSet holds the effective settings of every builtin rule for one profile
type ruleSet struct {
	rules       map[string]ruleSettings
	minSeverity int
}

func newRuleSet(profile config.ProfileConfig) ruleSet {
	rs := ruleSet{
		rules:       make(map[string]ruleSettings, len(builtinRules)),
		minSeverity: profile.MinSeverity,
	}

	for _, r := range builtinRules {
		s := ruleSettings{enabled: true, severity: r.Severity, threshold: r.Threshold}
		if override, ok := profile.Rules[r.ID]; ok {
			s.enabled = override.IsEnabled()
			if override.Severity > 0 {
				s.severity = override.Severity
			}
			if override.Threshold > 0 {
				s.threshold = override.Threshold
			}
		}
		rs.rules[r.ID] = s
	}

	// parse errors are always reported
	ps := rs.rules[constants.RuleParseError]
	ps.enabled = true
	rs.rules[constants.RuleParseError] = ps

	return rs
}

func (rs ruleSet) enabled(id string) bool {
	return rs.rules[id].enabled
}

func (rs ruleSet) get(id string) ruleSettings {
	return rs.rules[id]
}

// keeps reports whether a violation at severity passes the profile's floor
func (rs ruleSet) keeps(severity int) bool {
	return severity >= rs.minSeverity
}
