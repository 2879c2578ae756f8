package service

import (
	"errors"
	"fmt"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
)

// ConfigurationLoader loads the run configuration and applies command-line overrides
type ConfigurationLoader struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoader {
	return &ConfigurationLoader{}
}

// ConfigOverrides holds values given on the command line. Zero values keep the file's settings.
type ConfigOverrides struct {
	Mode string

	// MaxViolations overrides the cap when >= 0
	MaxViolations int

	NoColor      bool
	OutputFormat string
	JournalPath  string
}

// NoOverrides returns overrides that change nothing
func NoOverrides() ConfigOverrides {
	return ConfigOverrides{MaxViolations: -1}
}

// LoadConfig loads configPath, or discovers a file from targetPath when configPath is empty.
// Failures are CONFIG_ERROR domain errors whose message tells missing, unparsable,
// wrongly shaped and invalid files apart.
func (c *ConfigurationLoader) LoadConfig(configPath, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(configPath, targetPath)
	if err != nil {
		return nil, domain.NewConfigError(configErrorMessage(err), err)
	}
	return cfg, nil
}

func configErrorMessage(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return "configuration file not found"
	case errors.Is(err, config.ErrConfigParse):
		return "configuration file could not be parsed"
	case errors.Is(err, config.ErrConfigShape):
		return "configuration file has the wrong shape"
	case errors.Is(err, config.ErrConfigInvalid):
		return "configuration is invalid"
	default:
		return "failed to load configuration"
	}
}

// MergeConfig applies overrides to a copy of base and validates the result
func (c *ConfigurationLoader) MergeConfig(base *config.Config, overrides ConfigOverrides) (*config.Config, error) {
	merged := *base

	if overrides.Mode != "" {
		merged.Gate.Mode = overrides.Mode
	}
	if overrides.MaxViolations >= 0 {
		merged.Gate.MaxViolations = overrides.MaxViolations
	}
	if overrides.NoColor {
		merged.Output.NoColor = true
	}
	if overrides.OutputFormat != "" {
		merged.Output.Format = overrides.OutputFormat
	}
	if overrides.JournalPath != "" {
		merged.Journal.Path = overrides.JournalPath
	}

	if err := merged.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid command-line override", err)
	}
	return &merged, nil
}

// colorOutput reports whether the report reaches a terminal that renders colors
var colorOutput = IsInteractiveEnvironment

// BuildReportConfig derives the immutable report policy of a run.
// Highlighting is only kept when stderr is an interactive terminal.
func BuildReportConfig(cfg *config.Config) (domain.ReportConfig, error) {
	mode, err := domain.ParseMode(cfg.Gate.Mode)
	if err != nil {
		return domain.ReportConfig{}, domain.NewConfigError("invalid gate.mode", err)
	}
	if cfg.Gate.MaxViolations < 0 {
		return domain.ReportConfig{}, domain.NewConfigError(
			fmt.Sprintf("gate.max_violations must be >= 0, got %d", cfg.Gate.MaxViolations), nil)
	}

	return domain.ReportConfig{
		Mode:                mode,
		MaxViolations:       cfg.Gate.MaxViolations,
		HighlightBySeverity: cfg.Gate.Highlight && !cfg.Output.NoColor && colorOutput(),
		Template:            cfg.Gate.Template,
	}, nil
}
