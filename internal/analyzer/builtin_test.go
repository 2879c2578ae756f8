package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
)

func analyze(t *testing.T, path, source string, profile config.ProfileConfig) []domain.Violation {
	t.Helper()
	vs, err := NewBuiltinAnalyzer(profile).Analyze(context.Background(), path, []byte(source))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return vs
}

func rulesOf(vs []domain.Violation) map[string]int {
	counts := make(map[string]int)
	for _, v := range vs {
		counts[v.RuleID]++
	}
	return counts
}

func TestBuiltinAnalyzer_Rules(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		source   string
		expected map[string]int
	}{
		{"clean", "a.js", "const x = 1;\nexport function add(a, b) { return a + b; }\n", map[string]int{}},
		{"eval", "a.js", "eval(\"1 + 1\");\n", map[string]int{constants.RuleNoEval: 1}},
		{"member eval is fine", "a.js", "obj.eval(code);\n", map[string]int{}},
		{"debugger", "a.js", "function f() { debugger; }\n", map[string]int{constants.RuleNoDebugger: 1}},
		{"unreachable after return", "a.js", "function f() { return 1; g(); h(); }\n", map[string]int{constants.RuleNoUnreachable: 1}},
		{"hoisted function after return", "a.js", "function f() { return g(); function g() { return 1; } }\n", map[string]int{}},
		{"unreachable after throw in case", "a.js", "switch (x) { case 1: throw e; y(); }\n", map[string]int{constants.RuleNoUnreachable: 1}},
		{"loose equality", "a.js", "if (a == b || c != d) { go(); }\n", map[string]int{constants.RuleEqeqeq: 2}},
		{"strict equality", "a.js", "if (a === b) { go(); }\n", map[string]int{}},
		{"var", "a.js", "var x = 1;\nlet y = 2;\nconst z = 3;\n", map[string]int{constants.RuleNoVar: 1}},
		{"empty block", "a.js", "if (a) {}\n", map[string]int{constants.RuleNoEmptyBlock: 1}},
		{"empty catch", "a.js", "try { a(); } catch (e) {}\n", map[string]int{constants.RuleNoEmptyBlock: 1}},
		{"commented block", "a.js", "if (a) { /* nothing to do */ }\n", map[string]int{}},
		{"empty function body", "a.js", "function noop() {}\nconst f = () => {};\n", map[string]int{}},
		{"console", "a.js", "console.log(1);\nconsole.error(2);\nlogger.log(3);\n", map[string]int{constants.RuleNoConsole: 2}},
		{"too many params", "a.js", "function f(a, b, c, d, e, g) { return a; }\n", map[string]int{constants.RuleMaxParams: 1}},
		{
			"too deep", "a.js",
			"function f() { if (a) { if (b) { for (;;) { while (c) { if (d) { go(); } } } } } }\n",
			map[string]int{constants.RuleMaxDepth: 1},
		},
		{
			"else if does not nest", "a.js",
			"function f() { if (a) { x(); } else if (b) { y(); } else if (c) { z(); } else if (d) { w(); } else if (e) { v(); } }\n",
			map[string]int{},
		},
		{
			"too complex", "a.js",
			"function f() { return a && b && c && d && e && f && g && h && i && j && k; }\n",
			map[string]int{constants.RuleMaxComplexity: 1},
		},
		{"syntax error", "a.js", "function (\n", map[string]int{constants.RuleParseError: 1}},
		{"typescript", "a.ts", "const n: number = 1;\nif (n == 1) { go(); }\n", map[string]int{constants.RuleEqeqeq: 1}},
		{"tsx", "a.tsx", "export const V = () => <div>{debugger_ok}</div>;\n", map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rulesOf(analyze(t, tt.path, tt.source, config.DefaultProfileConfig()))

			if tt.expected[constants.RuleParseError] > 0 {
				if got[constants.RuleParseError] == 0 {
					t.Errorf("expected a parse error, got %v", got)
				}
				return
			}

			if len(got) != len(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
			for rule, n := range tt.expected {
				if got[rule] != n {
					t.Errorf("%s: expected %d, got %d (all: %v)", rule, n, got[rule], got)
				}
			}
		})
	}
}

func TestBuiltinAnalyzer_Location(t *testing.T) {
	vs := analyze(t, "a.js", "\n  debugger;\n", config.DefaultProfileConfig())
	if len(vs) != 1 {
		t.Fatalf("expected 1 violation, got %v", vs)
	}

	v := vs[0]
	if v.Line != 2 || v.Column != 3 {
		t.Errorf("expected 2:3, got %d:%d", v.Line, v.Column)
	}
	if v.Severity != 4 {
		t.Errorf("expected default severity 4, got %d", v.Severity)
	}
}

func TestBuiltinAnalyzer_ProfileOverrides(t *testing.T) {
	disabled := false
	profile := config.DefaultProfileConfig()
	profile.Rules = map[string]config.RuleConfig{
		constants.RuleNoConsole:  {Enabled: &disabled},
		constants.RuleEqeqeq:     {Severity: 5},
		constants.RuleMaxParams:  {Threshold: 10},
		constants.RuleParseError: {Enabled: &disabled},
	}
	profile.MinSeverity = 3

	source := "console.log(a == b);\nvar x = 1;\nfunction f(a, b, c, d, e, g) { return a; }\n"
	vs := analyze(t, "a.js", source, profile)

	got := rulesOf(vs)
	if got[constants.RuleNoConsole] != 0 {
		t.Error("no-console should be disabled")
	}
	if got[constants.RuleNoVar] != 0 {
		t.Error("no-var (severity 2) should be dropped by min_severity 3")
	}
	if got[constants.RuleMaxParams] != 0 {
		t.Error("max-params threshold override not applied")
	}
	if got[constants.RuleEqeqeq] != 1 || vs[0].Severity != 5 {
		t.Errorf("expected eqeqeq at severity 5, got %v", vs)
	}

	broken := analyze(t, "a.js", "function (\n", profile)
	if rulesOf(broken)[constants.RuleParseError] == 0 {
		t.Error("parse errors cannot be disabled")
	}
}

func TestBuiltinRules(t *testing.T) {
	rules := BuiltinRules()
	if len(rules) != 11 {
		t.Fatalf("expected 11 rules, got %d", len(rules))
	}
	for i := 1; i < len(rules); i++ {
		if rules[i-1].ID >= rules[i].ID {
			t.Errorf("rules not sorted: %s before %s", rules[i-1].ID, rules[i].ID)
		}
	}

	r, ok := LookupRule(constants.RuleMaxComplexity)
	if !ok || r.Threshold != 10 || r.Severity != 3 {
		t.Errorf("unexpected max-complexity rule %+v", r)
	}
	if _, ok := LookupRule("no-such-rule"); ok {
		t.Error("unknown rule should not be found")
	}
}

func TestBuiltinAnalyzer_Messages(t *testing.T) {
	vs := analyze(t, "a.js", "console.warn(1);\n", config.DefaultProfileConfig())
	if len(vs) != 1 || !strings.Contains(vs[0].Message, "console.warn") {
		t.Errorf("expected message naming console.warn, got %v", vs)
	}
}
