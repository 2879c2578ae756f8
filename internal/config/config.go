package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/spf13/viper"
)

// Gate defaults
const (
	// DefaultMode holds modified files to the no-regression standard
	DefaultMode = "progressive"

	// DefaultMaxViolations caps the per-file listing
	DefaultMaxViolations = 50

	// DefaultEmergencyPrefix marks a commit message line requesting a bypass
	DefaultEmergencyPrefix = "EMERGENCY:"
)

// Performance defaults
const (
	DefaultMaxGoroutines  = 4
	DefaultTimeoutSeconds = 300
)

// ESLint severity mapping defaults
const (
	DefaultESLintErrorSeverity   = 4
	DefaultESLintWarningSeverity = 2
)

// Load failures, distinguishable with errors.Is
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("config file could not be parsed")
	ErrConfigShape    = errors.New("config file has the wrong shape")
	ErrConfigInvalid  = errors.New("invalid configuration")
)

// Config represents the main configuration structure
type Config struct {
	// Gate holds the commit gate policy
	Gate GateConfig `json:"gate" mapstructure:"gate" yaml:"gate"`

	// Profiles are the named analyzer configurations
	Profiles map[string]ProfileConfig `json:"profiles" mapstructure:"profiles" yaml:"profiles"`

	// Paths map file patterns to profiles; the last matching entry wins
	Paths []PathRule `json:"paths" mapstructure:"paths" yaml:"paths"`

	// Journal configures the decision journal
	Journal JournalConfig `json:"journal" mapstructure:"journal" yaml:"journal"`

	// Performance bounds parallel file evaluation
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`
}

// GateConfig holds the gate policy
type GateConfig struct {
	// Mode is strict or progressive; added files are always strict
	Mode string `json:"mode" mapstructure:"mode" yaml:"mode"`

	// MaxViolations caps the per-file listing, 0 disables the cap
	MaxViolations int `json:"max_violations" mapstructure:"max_violations" yaml:"max_violations"`

	// Highlight colors report lines by severity
	Highlight bool `json:"highlight" mapstructure:"highlight" yaml:"highlight"`

	// AllowEmergencyBypass enables the commit message bypass
	AllowEmergencyBypass bool `json:"allow_emergency_bypass" mapstructure:"allow_emergency_bypass" yaml:"allow_emergency_bypass"`

	// EmergencyCommentPrefix starts the commit message line requesting a bypass
	EmergencyCommentPrefix string `json:"emergency_comment_prefix" mapstructure:"emergency_comment_prefix" yaml:"emergency_comment_prefix"`

	// Template renders one violation; see the report formatter for placeholders
	Template string `json:"template" mapstructure:"template" yaml:"template"`
}

// ProfileConfig is one named analyzer configuration
type ProfileConfig struct {
	// Analyzer is builtin or eslint
	Analyzer string `json:"analyzer" mapstructure:"analyzer" yaml:"analyzer"`

	// Rules tunes builtin rules by id
	Rules map[string]RuleConfig `json:"rules,omitempty" mapstructure:"rules" yaml:"rules,omitempty"`

	// MinSeverity drops violations below this severity
	MinSeverity int `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`

	// Command runs an external analyzer; "{path}" is replaced by the file path
	Command []string `json:"command,omitempty" mapstructure:"command" yaml:"command,omitempty"`

	ESLintErrorSeverity   int `json:"eslint_error_severity,omitempty" mapstructure:"eslint_error_severity" yaml:"eslint_error_severity,omitempty"`
	ESLintWarningSeverity int `json:"eslint_warning_severity,omitempty" mapstructure:"eslint_warning_severity" yaml:"eslint_warning_severity,omitempty"`
}

// RuleConfig overrides a builtin rule. Zero values keep the rule's defaults.
type RuleConfig struct {
	Enabled   *bool `json:"enabled,omitempty" mapstructure:"enabled" yaml:"enabled,omitempty"`
	Severity  int   `json:"severity,omitempty" mapstructure:"severity" yaml:"severity,omitempty"`
	Threshold int   `json:"threshold,omitempty" mapstructure:"threshold" yaml:"threshold,omitempty"`
}

// IsEnabled reports whether the rule runs, true unless disabled explicitly
func (r RuleConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// PathRule binds a gitignore-style pattern to a profile. An empty profile excludes matching files.
type PathRule struct {
	Pattern string `json:"pattern" mapstructure:"pattern" yaml:"pattern"`
	Profile string `json:"profile" mapstructure:"profile" yaml:"profile"`
}

// JournalConfig configures the SQLite decision journal
type JournalConfig struct {
	// Path of the database file; empty disables the journal
	Path string `json:"path" mapstructure:"path" yaml:"path"`
}

// PerformanceConfig bounds parallel evaluation
type PerformanceConfig struct {
	// MaxGoroutines limits concurrently evaluated files; 1 is sequential
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole evaluation run
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format of the machine output on stdout: text (none), json or yaml
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// NoColor disables severity highlighting regardless of gate.highlight
	NoColor bool `json:"no_color" mapstructure:"no_color" yaml:"no_color"`
}

// DefaultProfileConfig returns the builtin profile used when none is configured
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		Analyzer:              constants.AnalyzerBuiltin,
		MinSeverity:           1,
		ESLintErrorSeverity:   DefaultESLintErrorSeverity,
		ESLintWarningSeverity: DefaultESLintWarningSeverity,
	}
}

// DefaultPaths maps every JavaScript and TypeScript file to the default profile
// and excludes dependency and build directories.
func DefaultPaths() []PathRule {
	rules := []PathRule{}
	for _, ext := range []string{"js", "jsx", "mjs", "cjs", "ts", "tsx", "mts", "cts"} {
		rules = append(rules, PathRule{Pattern: "*." + ext, Profile: constants.DefaultProfile})
	}
	for _, excluded := range []string{"node_modules/", "dist/", "build/", "coverage/", "*.min.js", "*.bundle.js"} {
		rules = append(rules, PathRule{Pattern: excluded})
	}
	return rules
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Gate: GateConfig{
			Mode:                   DefaultMode,
			MaxViolations:          DefaultMaxViolations,
			Highlight:              true,
			AllowEmergencyBypass:   false,
			EmergencyCommentPrefix: DefaultEmergencyPrefix,
		},
		Profiles: map[string]ProfileConfig{
			constants.DefaultProfile: DefaultProfileConfig(),
		},
		Paths: DefaultPaths(),
		Performance: PerformanceConfig{
			MaxGoroutines:  DefaultMaxGoroutines,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Output: OutputConfig{
			Format: constants.OutputFormatText,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a file from targetPath upward
// when configPath is empty. An explicit configPath that does not exist is an error.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	} else if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, configPath, err)
	}

	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads a file (if any), applies JSGATE_* environment
// overrides and validates the result
func loadConfigFromFile(configPath string) (*Config, error) {
	// a fresh viper per load keeps concurrent loads independent
	v := viper.New()
	config := DefaultConfig()

	setDefaults(v, config)
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigShape, err)
	}

	// decode paths on their own so a configured list replaces the defaults instead of merging
	if v.InConfig("paths") {
		var paths []PathRule
		if err := v.UnmarshalKey("paths", &paths); err != nil {
			return nil, fmt.Errorf("%w: paths: %w", ErrConfigShape, err)
		}
		config.Paths = paths
	}

	// viper lowercases map keys, so profile references must match case-insensitively
	for i := range config.Paths {
		config.Paths[i].Profile = strings.ToLower(config.Paths[i].Profile)
	}

	config.applyProfileDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	return config, nil
}

// setDefaults registers scalar keys so environment overrides apply without a file
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("gate.mode", c.Gate.Mode)
	v.SetDefault("gate.max_violations", c.Gate.MaxViolations)
	v.SetDefault("gate.highlight", c.Gate.Highlight)
	v.SetDefault("gate.allow_emergency_bypass", c.Gate.AllowEmergencyBypass)
	v.SetDefault("gate.emergency_comment_prefix", c.Gate.EmergencyCommentPrefix)
	v.SetDefault("gate.template", c.Gate.Template)
	v.SetDefault("journal.path", c.Journal.Path)
	v.SetDefault("performance.max_goroutines", c.Performance.MaxGoroutines)
	v.SetDefault("performance.timeout_seconds", c.Performance.TimeoutSeconds)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.no_color", c.Output.NoColor)
}

// applyProfileDefaults fills unset profile fields
func (c *Config) applyProfileDefaults() {
	for name, p := range c.Profiles {
		if p.Analyzer == "" {
			p.Analyzer = constants.AnalyzerBuiltin
		}
		if p.ESLintErrorSeverity == 0 {
			p.ESLintErrorSeverity = DefaultESLintErrorSeverity
		}
		if p.ESLintWarningSeverity == 0 {
			p.ESLintWarningSeverity = DefaultESLintWarningSeverity
		}
		c.Profiles[name] = p
	}
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configCandidates are the file names looked up during discovery, in priority order
var configCandidates = []string{
	"jsgate.yaml",
	"jsgate.yml",
	".jsgate.yaml",
	".jsgate.yml",
	".jsgate.toml",
	"jsgate.json",
}

// findDefaultConfig looks for a configuration file from targetPath upward, then in
// the current directory, the XDG config directory, the home directory and finally
// the JSGATE_CONFIG environment variable. It returns "" when nothing is found.
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		if absPath, err := filepath.Abs(targetPath); err == nil {
			if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir || dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), configCandidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", constants.ToolName), configCandidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, configCandidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	switch c.Gate.Mode {
	case "strict", "progressive":
	default:
		return fmt.Errorf("invalid gate.mode '%s', must be one of: strict, progressive", c.Gate.Mode)
	}

	if c.Gate.MaxViolations < 0 {
		return fmt.Errorf("gate.max_violations must be >= 0, got %d", c.Gate.MaxViolations)
	}

	if c.Gate.AllowEmergencyBypass && strings.TrimSpace(c.Gate.EmergencyCommentPrefix) == "" {
		return fmt.Errorf("gate.emergency_comment_prefix cannot be empty when gate.allow_emergency_bypass is set")
	}

	if len(c.Profiles) == 0 {
		return fmt.Errorf("profiles cannot be empty")
	}

	for name, p := range c.Profiles {
		if err := p.validate(name); err != nil {
			return err
		}
	}

	for i, rule := range c.Paths {
		if strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("paths[%d].pattern cannot be empty", i)
		}
		if rule.Profile == "" {
			continue
		}
		if _, ok := c.Profiles[rule.Profile]; !ok {
			return fmt.Errorf("paths[%d] references unknown profile '%s'", i, rule.Profile)
		}
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	switch c.Output.Format {
	case constants.OutputFormatText, constants.OutputFormatJSON, constants.OutputFormatYAML:
	default:
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	return nil
}

func (p ProfileConfig) validate(name string) error {
	switch p.Analyzer {
	case constants.AnalyzerBuiltin:
	case constants.AnalyzerESLint:
		if len(p.Command) > 0 && strings.TrimSpace(p.Command[0]) == "" {
			return fmt.Errorf("profiles.%s.command must start with an executable", name)
		}
	default:
		return fmt.Errorf("invalid profiles.%s.analyzer '%s', must be one of: builtin, eslint", name, p.Analyzer)
	}

	if p.MinSeverity < 0 || p.MinSeverity > 5 {
		return fmt.Errorf("profiles.%s.min_severity must be between 0 and 5, got %d", name, p.MinSeverity)
	}

	for _, sev := range []int{p.ESLintErrorSeverity, p.ESLintWarningSeverity} {
		if sev < 1 || sev > 5 {
			return fmt.Errorf("profiles.%s eslint severities must be between 1 and 5, got %d", name, sev)
		}
	}

	for id, rule := range p.Rules {
		if rule.Severity < 0 || rule.Severity > 5 {
			return fmt.Errorf("profiles.%s.rules.%s.severity must be between 0 and 5, got %d", name, id, rule.Severity)
		}
		if rule.Threshold < 0 {
			return fmt.Errorf("profiles.%s.rules.%s.threshold must be >= 0, got %d", name, id, rule.Threshold)
		}
	}

	return nil
}
