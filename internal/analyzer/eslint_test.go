package analyzer

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
)

const eslintOutput = `[{"filePath":"/repo/src/a.js","messages":[
  {"ruleId":"no-unused-vars","severity":2,"message":"'x' is defined but never used.","line":1,"column":7},
  {"ruleId":"semi","severity":1,"message":"Missing semicolon.","line":2,"column":10},
  {"ruleId":null,"severity":1,"message":"File ignored because of a matching ignore pattern."},
  {"ruleId":null,"fatal":true,"severity":2,"message":"Parsing error: Unexpected token","line":3,"column":1}
]}]`

func eslintProfile() config.ProfileConfig {
	p := config.DefaultProfileConfig()
	p.Analyzer = constants.AnalyzerESLint
	return p
}

func TestESLintAnalyzer_Parse(t *testing.T) {
	a := NewESLintAnalyzer(eslintProfile(), "")

	vs, err := a.parse([]byte(eslintOutput))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(vs) != 3 {
		t.Fatalf("expected 3 violations, got %v", vs)
	}

	expected := []struct {
		rule     string
		severity int
	}{
		{"no-unused-vars", config.DefaultESLintErrorSeverity},
		{"semi", config.DefaultESLintWarningSeverity},
		{constants.RuleParseError, 5},
	}
	for i, e := range expected {
		if vs[i].RuleID != e.rule || vs[i].Severity != e.severity {
			t.Errorf("violation %d: expected %s/%d, got %s/%d", i, e.rule, e.severity, vs[i].RuleID, vs[i].Severity)
		}
	}
	if vs[0].Line != 1 || vs[0].Column != 7 {
		t.Errorf("location not kept: %+v", vs[0])
	}
}

func TestESLintAnalyzer_SeverityMapping(t *testing.T) {
	p := eslintProfile()
	p.ESLintErrorSeverity = 5
	p.ESLintWarningSeverity = 1
	p.MinSeverity = 2

	vs, err := NewESLintAnalyzer(p, "").parse([]byte(eslintOutput))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	// the warning maps to 1 and falls below min_severity
	if len(vs) != 2 || vs[0].Severity != 5 {
		t.Errorf("unexpected violations %v", vs)
	}
}

func TestESLintAnalyzer_InvalidJSON(t *testing.T) {
	_, err := NewESLintAnalyzer(eslintProfile(), "").parse([]byte("Oops! Something went wrong"))
	if !errors.Is(err, fault.ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON, got %v", err)
	}
}

func shellProfile(t *testing.T, script string) config.ProfileConfig {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p := eslintProfile()
	p.Command = []string{"sh", "-c", script, "eslint", constants.PathPlaceholder}
	return p
}

func TestESLintAnalyzer_Run(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    int
		wantErr error
	}{
		{
			name:   "exit 1 with results is a normal run",
			script: `cat >/dev/null; echo '[{"filePath":"'"$1"'","messages":[{"ruleId":"eqeqeq","severity":2,"message":"m","line":1,"column":1}]}]'; exit 1`,
			want:   1,
		},
		{
			name:   "clean file",
			script: `cat >/dev/null; echo '[{"filePath":"x","messages":[]}]'`,
			want:   0,
		},
		{
			name:    "crash",
			script:  `echo 'config not found' >&2; exit 2`,
			wantErr: fault.ErrCommandFailure,
		},
		{
			name:    "exit 1 without json",
			script:  `exit 1`,
			wantErr: fault.ErrInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewESLintAnalyzer(shellProfile(t, tt.script), t.TempDir())

			vs, err := a.Analyze(context.Background(), "src/a.js", []byte("var a = 1;\n"))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if len(vs) != tt.want {
				t.Errorf("expected %d violations, got %v", tt.want, vs)
			}
		})
	}
}

func TestESLintAnalyzer_StdinAndPath(t *testing.T) {
	script := `input=$(cat); [ "$1" = "src/a.js" ] || exit 3; [ "$input" = "debugger;" ] || exit 4; echo '[]'`
	a := NewESLintAnalyzer(shellProfile(t, script), "")

	if _, err := a.Analyze(context.Background(), "src/a.js", []byte("debugger;")); err != nil {
		t.Errorf("content should arrive on stdin and {path} be substituted: %v", err)
	}
}

func TestESLintAnalyzer_MissingBinary(t *testing.T) {
	p := eslintProfile()
	p.Command = []string{"jsgate-no-such-linter-binary"}

	_, err := NewESLintAnalyzer(p, "").Analyze(context.Background(), "a.js", nil)
	if !errors.Is(err, fault.ErrMissingRequirements) {
		t.Errorf("expected ErrMissingRequirements, got %v", err)
	}
}
