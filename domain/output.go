package domain

import (
	"fmt"
	"strings"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat converts a configuration value into an OutputFormat; "" means text
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return OutputFormatText, nil
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", NewUnsupportedFormatError(fmt.Sprintf("%s (must be one of: text, json, yaml)", value))
	}
}
