package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/jsgate/internal/constants"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Gate.Mode != DefaultMode {
		t.Errorf("Expected mode %s, got %s", DefaultMode, config.Gate.Mode)
	}
	if config.Gate.MaxViolations != DefaultMaxViolations {
		t.Errorf("Expected max_violations %d, got %d", DefaultMaxViolations, config.Gate.MaxViolations)
	}
	if config.Gate.AllowEmergencyBypass {
		t.Error("Emergency bypass should be disabled by default")
	}
	if _, ok := config.Profiles[constants.DefaultProfile]; !ok {
		t.Error("Default profile should exist")
	}
	if len(config.Paths) == 0 {
		t.Error("Paths should not be empty")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"invalid mode", func(c *Config) { c.Gate.Mode = "lenient" }, "gate.mode"},
		{"negative cap", func(c *Config) { c.Gate.MaxViolations = -1 }, "max_violations"},
		{"bypass without prefix", func(c *Config) {
			c.Gate.AllowEmergencyBypass = true
			c.Gate.EmergencyCommentPrefix = "  "
		}, "emergency_comment_prefix"},
		{"no profiles", func(c *Config) { c.Profiles = nil }, "profiles cannot be empty"},
		{"unknown analyzer", func(c *Config) {
			p := c.Profiles[constants.DefaultProfile]
			p.Analyzer = "jshint"
			c.Profiles[constants.DefaultProfile] = p
		}, "analyzer"},
		{"min severity out of range", func(c *Config) {
			p := c.Profiles[constants.DefaultProfile]
			p.MinSeverity = 9
			c.Profiles[constants.DefaultProfile] = p
		}, "min_severity"},
		{"rule severity out of range", func(c *Config) {
			p := c.Profiles[constants.DefaultProfile]
			p.Rules = map[string]RuleConfig{"no-var": {Severity: 6}}
			c.Profiles[constants.DefaultProfile] = p
		}, "rules.no-var.severity"},
		{"empty pattern", func(c *Config) { c.Paths = append(c.Paths, PathRule{Profile: "default"}) }, "pattern cannot be empty"},
		{"unknown profile reference", func(c *Config) {
			c.Paths = append(c.Paths, PathRule{Pattern: "*.js", Profile: "missing"})
		}, "unknown profile"},
		{"invalid output format", func(c *Config) { c.Output.Format = "html" }, "output.format"},
		{"negative goroutines", func(c *Config) { c.Performance.MaxGoroutines = -2 }, "max_goroutines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)

			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRuleConfig_IsEnabled(t *testing.T) {
	enabled, disabled := true, false

	if !(RuleConfig{}).IsEnabled() {
		t.Error("unset enabled should mean enabled")
	}
	if !(RuleConfig{Enabled: &enabled}).IsEnabled() {
		t.Error("explicit true should be enabled")
	}
	if (RuleConfig{Enabled: &disabled}).IsEnabled() {
		t.Error("explicit false should be disabled")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "jsgate.yaml", `
gate:
  mode: strict
  max_violations: 10
  allow_emergency_bypass: true
  emergency_comment_prefix: "HOTFIX:"
profiles:
  Legacy:
    analyzer: builtin
    min_severity: 3
    rules:
      no-console:
        enabled: false
      max-complexity:
        threshold: 15
paths:
  - pattern: "*.js"
    profile: legacy
  - pattern: "vendor/"
performance:
  max_goroutines: 1
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Gate.Mode != "strict" || cfg.Gate.MaxViolations != 10 {
		t.Errorf("gate not loaded: %+v", cfg.Gate)
	}
	if !cfg.Gate.AllowEmergencyBypass || cfg.Gate.EmergencyCommentPrefix != "HOTFIX:" {
		t.Errorf("bypass settings not loaded: %+v", cfg.Gate)
	}

	legacy, ok := cfg.Profiles["legacy"]
	if !ok {
		t.Fatalf("expected lowercased profile 'legacy', got %v", cfg.Profiles)
	}
	if legacy.MinSeverity != 3 {
		t.Errorf("expected min_severity 3, got %d", legacy.MinSeverity)
	}
	if legacy.Rules["no-console"].IsEnabled() {
		t.Error("no-console should be disabled")
	}
	if legacy.Rules["max-complexity"].Threshold != 15 {
		t.Errorf("expected threshold 15, got %d", legacy.Rules["max-complexity"].Threshold)
	}
	if legacy.ESLintErrorSeverity != DefaultESLintErrorSeverity {
		t.Errorf("profile defaults not applied: %+v", legacy)
	}

	if len(cfg.Paths) != 2 {
		t.Fatalf("configured paths should replace defaults, got %v", cfg.Paths)
	}
	if cfg.Paths[1].Profile != "" {
		t.Errorf("expected exclusion entry, got %+v", cfg.Paths[1])
	}
	if cfg.Performance.MaxGoroutines != 1 {
		t.Errorf("expected max_goroutines 1, got %d", cfg.Performance.MaxGoroutines)
	}
	if cfg.Performance.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("unset keys should keep defaults, got %d", cfg.Performance.TimeoutSeconds)
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "jsgate.yaml", "gate: [unclosed\n")

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("expected ErrConfigParse, got %v", err)
	}
}

func TestLoadConfig_WrongShape(t *testing.T) {
	path := writeFile(t, t.TempDir(), "jsgate.yaml", "gate:\n  max_violations: [1, 2]\n")

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrConfigShape) {
		t.Errorf("expected ErrConfigShape, got %v", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "jsgate.yaml", "gate:\n  mode: sometimes\n")

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("JSGATE_GATE_MODE", "strict")
	t.Setenv("JSGATE_PERFORMANCE_MAX_GOROUTINES", "2")

	path := writeFile(t, t.TempDir(), "jsgate.yaml", "gate:\n  mode: progressive\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Gate.Mode != "strict" {
		t.Errorf("environment should override the file, got %s", cfg.Gate.Mode)
	}
	if cfg.Performance.MaxGoroutines != 2 {
		t.Errorf("expected max_goroutines 2 from environment, got %d", cfg.Performance.MaxGoroutines)
	}
}

func TestLoadConfigWithTarget_Discovery(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, ".jsgate.yaml", "gate:\n  max_violations: 7\n")

	cfg, err := LoadConfigWithTarget("", nested)
	if err != nil {
		t.Fatalf("LoadConfigWithTarget failed: %v", err)
	}
	if cfg.Gate.MaxViolations != 7 {
		t.Errorf("expected discovered config to be used, got %d", cfg.Gate.MaxViolations)
	}
}

func TestSearchConfigInDirectory(t *testing.T) {
	dir := t.TempDir()

	if got := searchConfigInDirectory(dir, configCandidates); got != "" {
		t.Errorf("expected no config, got %s", got)
	}

	writeFile(t, dir, "jsgate.json", "{}")
	writeFile(t, dir, "jsgate.yml", "gate: {}\n")

	got := searchConfigInDirectory(dir, configCandidates)
	if filepath.Base(got) != "jsgate.yml" {
		t.Errorf("expected jsgate.yml to win by priority, got %s", got)
	}
}
