package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestNewConfigurationLoader(t *testing.T) {
	loader := NewConfigurationLoader()

	if loader == nil {
		t.Fatal("NewConfigurationLoader should not return nil")
	}
}

func TestConfigurationLoader_LoadConfig_Valid(t *testing.T) {
	tempDir := t.TempDir()
	configFile := writeConfigFile(t, tempDir, "jsgate.yaml", `
gate:
  mode: strict
  max_violations: 10
  allow_emergency_bypass: true
profiles:
  legacy:
    analyzer: builtin
    min_severity: 3
paths:
  - pattern: "*.js"
    profile: default
  - pattern: "legacy/"
    profile: legacy
`)

	cfg, err := NewConfigurationLoader().LoadConfig(configFile, "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Gate.Mode != "strict" || cfg.Gate.MaxViolations != 10 || !cfg.Gate.AllowEmergencyBypass {
		t.Errorf("Gate settings not loaded: %+v", cfg.Gate)
	}
	if cfg.Gate.EmergencyCommentPrefix != config.DefaultEmergencyPrefix {
		t.Errorf("Expected default prefix, got %q", cfg.Gate.EmergencyCommentPrefix)
	}
	if _, ok := cfg.Profiles["legacy"]; !ok {
		t.Error("Expected legacy profile to be loaded")
	}
	if len(cfg.Paths) != 2 {
		t.Errorf("Configured paths should replace the defaults, got %d rules", len(cfg.Paths))
	}
}

func TestConfigurationLoader_LoadConfig_Errors(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		sentinel error
		message  string
	}{
		{
			name:     "missing file",
			path:     filepath.Join(tempDir, "absent.yaml"),
			sentinel: config.ErrConfigNotFound,
			message:  "configuration file not found",
		},
		{
			name:     "unparsable file",
			path:     writeConfigFile(t, tempDir, "broken.yaml", "gate: [unclosed\n"),
			sentinel: config.ErrConfigParse,
			message:  "configuration file could not be parsed",
		},
		{
			name:     "wrong shape",
			path:     writeConfigFile(t, tempDir, "shape.yaml", "gate:\n  max_violations: many\n"),
			sentinel: config.ErrConfigShape,
			message:  "configuration file has the wrong shape",
		},
		{
			name:     "invalid value",
			path:     writeConfigFile(t, tempDir, "invalid.yaml", "gate:\n  mode: lenient\n"),
			sentinel: config.ErrConfigInvalid,
			message:  "configuration is invalid",
		},
	}

	loader := NewConfigurationLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadConfig(tt.path, "")
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if domain.ErrorCode(err) != domain.ErrCodeConfigError {
				t.Errorf("Expected CONFIG_ERROR, got %q", domain.ErrorCode(err))
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected error to wrap %v, got %v", tt.sentinel, err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected message %q in %v", tt.message, err)
			}
		})
	}
}

func TestConfigurationLoader_LoadConfig_Discovery(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "jsgate.yaml", "gate:\n  mode: strict\n")

	nested := filepath.Join(tempDir, "src", "lib")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	cfg, err := NewConfigurationLoader().LoadConfig("", nested)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Gate.Mode != "strict" {
		t.Errorf("Expected discovered config to set strict mode, got %q", cfg.Gate.Mode)
	}
}

func TestConfigurationLoader_MergeConfig(t *testing.T) {
	loader := NewConfigurationLoader()
	base := config.DefaultConfig()

	t.Run("no overrides keep the base", func(t *testing.T) {
		merged, err := loader.MergeConfig(base, NoOverrides())
		if err != nil {
			t.Fatalf("MergeConfig failed: %v", err)
		}
		if merged.Gate.Mode != base.Gate.Mode || merged.Gate.MaxViolations != base.Gate.MaxViolations {
			t.Errorf("Expected base settings, got %+v", merged.Gate)
		}
		if merged == base {
			t.Error("MergeConfig should return a copy")
		}
	})

	t.Run("overrides apply", func(t *testing.T) {
		merged, err := loader.MergeConfig(base, ConfigOverrides{
			Mode:          "strict",
			MaxViolations: 0,
			NoColor:       true,
			OutputFormat:  "json",
			JournalPath:   "runs.db",
		})
		if err != nil {
			t.Fatalf("MergeConfig failed: %v", err)
		}
		if merged.Gate.Mode != "strict" || merged.Gate.MaxViolations != 0 {
			t.Errorf("Gate overrides not applied: %+v", merged.Gate)
		}
		if !merged.Output.NoColor || merged.Output.Format != "json" || merged.Journal.Path != "runs.db" {
			t.Errorf("Output overrides not applied: %+v %+v", merged.Output, merged.Journal)
		}
		if base.Gate.Mode != config.DefaultMode || base.Output.NoColor {
			t.Error("MergeConfig must not modify the base")
		}
	})

	t.Run("invalid override", func(t *testing.T) {
		overrides := NoOverrides()
		overrides.Mode = "lenient"

		_, err := loader.MergeConfig(base, overrides)
		if domain.ErrorCode(err) != domain.ErrCodeConfigError {
			t.Errorf("Expected CONFIG_ERROR, got %v", err)
		}
	})
}

func withColorOutput(t *testing.T, enabled bool) {
	t.Helper()
	previous := colorOutput
	colorOutput = func() bool { return enabled }
	t.Cleanup(func() { colorOutput = previous })
}

func TestBuildReportConfig(t *testing.T) {
	withColorOutput(t, true)
	cfg := config.DefaultConfig()
	cfg.Gate.Template = "%f:%l %r"

	rc, err := BuildReportConfig(cfg)
	if err != nil {
		t.Fatalf("BuildReportConfig failed: %v", err)
	}
	if rc.Mode != domain.ModeProgressive || rc.MaxViolations != config.DefaultMaxViolations {
		t.Errorf("Unexpected report config: %+v", rc)
	}
	if !rc.HighlightBySeverity || rc.Template != "%f:%l %r" {
		t.Errorf("Unexpected report config: %+v", rc)
	}

	cfg.Output.NoColor = true
	rc, err = BuildReportConfig(cfg)
	if err != nil {
		t.Fatalf("BuildReportConfig failed: %v", err)
	}
	if rc.HighlightBySeverity {
		t.Error("no_color should disable highlighting")
	}

	cfg.Gate.Mode = "lenient"
	if _, err := BuildReportConfig(cfg); domain.ErrorCode(err) != domain.ErrCodeConfigError {
		t.Errorf("Expected CONFIG_ERROR for invalid mode, got %v", err)
	}

	cfg.Gate.Mode = "strict"
	cfg.Gate.MaxViolations = -1
	if _, err := BuildReportConfig(cfg); domain.ErrorCode(err) != domain.ErrCodeConfigError {
		t.Errorf("Expected CONFIG_ERROR for negative cap, got %v", err)
	}
}

func TestBuildReportConfig_NonInteractiveDisablesHighlight(t *testing.T) {
	withColorOutput(t, false)
	cfg := config.DefaultConfig()
	if !cfg.Gate.Highlight {
		t.Fatal("highlight should default to true")
	}

	rc, err := BuildReportConfig(cfg)
	if err != nil {
		t.Fatalf("BuildReportConfig failed: %v", err)
	}
	if rc.HighlightBySeverity {
		t.Error("highlighting should be off when stderr is not a terminal")
	}
}
