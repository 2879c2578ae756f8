package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ludo-technologies/jsgate/internal/constants"
	"gopkg.in/yaml.v3"
)

// ProjectType represents the type of JavaScript/TypeScript project
type ProjectType string

const (
	ProjectTypeGeneric     ProjectType = "generic"
	ProjectTypeReact       ProjectType = "react"
	ProjectTypeVue         ProjectType = "vue"
	ProjectTypeNodeBackend ProjectType = "node"
)

// Strictness represents the gate strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds path exclusions for a project type
type ProjectPreset struct {
	ExcludePatterns []string
}

// StrictnessPreset holds gate and rule values for a strictness level
type StrictnessPreset struct {
	Mode          string
	MaxViolations int
	MinSeverity   int
	MaxComplexity int
	MaxDepth      int
	MaxParams     int
}

// TemplateOptions drive config generation for "jsgate init"
type TemplateOptions struct {
	ProjectType ProjectType
	Strictness  Strictness

	// Mode overrides the strictness preset's mode when set
	Mode string

	// MaxViolations overrides the preset cap when >= 0
	MaxViolations int

	AllowEmergencyBypass bool
	EmergencyPrefix      string
}

// DefaultTemplateOptions returns the options used by a non-interactive init
func DefaultTemplateOptions() TemplateOptions {
	return TemplateOptions{
		ProjectType:     ProjectTypeGeneric,
		Strictness:      StrictnessStandard,
		MaxViolations:   -1,
		EmergencyPrefix: DefaultEmergencyPrefix,
	}
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	common := []string{"node_modules/", "dist/", "build/", "coverage/", "*.min.js", "*.bundle.js"}
	with := func(extra ...string) []string {
		return append(append([]string{}, common...), extra...)
	}

	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric:     {ExcludePatterns: with()},
		ProjectTypeReact:       {ExcludePatterns: with(".next/", "storybook-static/")},
		ProjectTypeVue:         {ExcludePatterns: with(".nuxt/", ".output/")},
		ProjectTypeNodeBackend: {ExcludePatterns: with("test/", "tests/", "__tests__/")},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			Mode:          "progressive",
			MaxViolations: 20,
			MinSeverity:   3,
			MaxComplexity: 20,
			MaxDepth:      6,
			MaxParams:     7,
		},
		StrictnessStandard: {
			Mode:          DefaultMode,
			MaxViolations: DefaultMaxViolations,
			MinSeverity:   1,
			MaxComplexity: 10,
			MaxDepth:      4,
			MaxParams:     5,
		},
		StrictnessStrict: {
			Mode:          "strict",
			MaxViolations: 0,
			MinSeverity:   1,
			MaxComplexity: 7,
			MaxDepth:      3,
			MaxParams:     4,
		},
	}
}

// BuildConfig assembles a configuration from presets
func BuildConfig(opts TemplateOptions) (*Config, error) {
	project, ok := GetProjectPresets()[opts.ProjectType]
	if !ok {
		return nil, fmt.Errorf("unknown project type '%s'", opts.ProjectType)
	}
	strict, ok := GetStrictnessPresets()[opts.Strictness]
	if !ok {
		return nil, fmt.Errorf("unknown strictness '%s'", opts.Strictness)
	}

	cfg := DefaultConfig()
	cfg.Gate.Mode = strict.Mode
	if opts.Mode != "" {
		cfg.Gate.Mode = opts.Mode
	}
	cfg.Gate.MaxViolations = strict.MaxViolations
	if opts.MaxViolations >= 0 {
		cfg.Gate.MaxViolations = opts.MaxViolations
	}
	cfg.Gate.AllowEmergencyBypass = opts.AllowEmergencyBypass
	if opts.EmergencyPrefix != "" {
		cfg.Gate.EmergencyCommentPrefix = opts.EmergencyPrefix
	}
	cfg.Gate.Template = ""

	profile := DefaultProfileConfig()
	profile.MinSeverity = strict.MinSeverity
	profile.Rules = map[string]RuleConfig{
		constants.RuleMaxComplexity: {Threshold: strict.MaxComplexity},
		constants.RuleMaxDepth:      {Threshold: strict.MaxDepth},
		constants.RuleMaxParams:     {Threshold: strict.MaxParams},
	}
	cfg.Profiles = map[string]ProfileConfig{constants.DefaultProfile: profile}

	cfg.Paths = nil
	for _, rule := range DefaultPaths() {
		if rule.Profile != "" {
			cfg.Paths = append(cfg.Paths, rule)
		}
	}
	for _, pattern := range project.ExcludePatterns {
		cfg.Paths = append(cfg.Paths, PathRule{Pattern: pattern})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sectionComments documents the top-level keys of a generated file
var sectionComments = map[string]string{
	"gate": "Gate policy.\n" +
		"mode: strict lists every violation; progressive only fails on rules\n" +
		"whose count grew. Added files are always checked strictly.\n" +
		"max_violations caps the per-file listing (0 = no cap).\n" +
		"template placeholders: %r rule, %s severity, %f file, %l line, %c column, %m message, %% percent.",
	"profiles": "Analyzer profiles. analyzer is builtin or eslint.\n" +
		"Builtin rules: parse-error, no-eval, no-debugger, no-unreachable, eqeqeq,\n" +
		"max-complexity, max-depth, max-params, no-var, no-empty-block, no-console.",
	"paths":       "Pattern to profile mapping, gitignore syntax. The last matching entry wins;\nan entry without profile excludes the files it matches.",
	"journal":     "Decision journal (SQLite). Leave path empty to disable.",
	"performance": "Parallel evaluation. max_goroutines: 1 evaluates files one at a time.",
	"output":      "Machine output on stdout: text (none), json or yaml.",
}

// RenderConfig renders cfg as YAML, with section comments when documented is set
func RenderConfig(cfg *Config, documented bool) (string, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if documented && doc.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			key := doc.Content[i]
			if comment, ok := sectionComments[key.Value]; ok {
				key.HeadComment = comment
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# jsgate configuration\n")
	if documented {
		buf.WriteString("# Environment variables override any key: JSGATE_GATE_MODE=strict\n")
	}
	buf.WriteString("\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}

	return buf.String(), nil
}

// GetFullConfigTemplate returns the documented config for a project type and strictness
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) (string, error) {
	opts := DefaultTemplateOptions()
	opts.ProjectType = projectType
	opts.Strictness = strictness

	cfg, err := BuildConfig(opts)
	if err != nil {
		return "", err
	}
	return RenderConfig(cfg, true)
}

// GetMinimalConfigTemplate returns a config holding only the gate section
func GetMinimalConfigTemplate() string {
	var sb strings.Builder
	sb.WriteString("# jsgate configuration (minimal)\n")
	sb.WriteString("# Run \"jsgate init\" without --minimal for every option.\n\n")
	sb.WriteString("gate:\n")
	fmt.Fprintf(&sb, "  mode: %s\n", DefaultMode)
	fmt.Fprintf(&sb, "  max_violations: %d\n", DefaultMaxViolations)
	sb.WriteString("  allow_emergency_bypass: false\n")
	fmt.Fprintf(&sb, "  emergency_comment_prefix: %q\n", DefaultEmergencyPrefix)
	return sb.String()
}
