package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/version"
)

// OutputFormatter writes machine-readable gate results
type OutputFormatter struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatter {
	return &OutputFormatter{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Write renders result in format. The text format writes nothing: the human
// report is written to stderr by the caller.
func (f *OutputFormatter) Write(result *domain.GateResult, format domain.OutputFormat, writer io.Writer) error {
	if result.Version == "" {
		result.Version = version.Version
	}
	if result.GeneratedAt == "" {
		result.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}

	var err error
	switch format {
	case domain.OutputFormatText, "":
		return nil
	case domain.OutputFormatJSON:
		err = WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		err = WriteYAML(writer, result)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}

	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to write %s output", format), err)
	}
	return nil
}

// WriteSummary writes a one-line human summary of a run
func (f *OutputFormatter) WriteSummary(result *domain.GateResult, writer io.Writer) error {
	var sb strings.Builder

	switch {
	case result.Bypassed:
		sb.WriteString("jsgate: emergency bypass requested, change allowed without analysis")
	case result.Allowed:
		fmt.Fprintf(&sb, "jsgate: PASS (%d file(s) evaluated", result.Summary.FilesEvaluated)
	default:
		fmt.Fprintf(&sb, "jsgate: FAIL (%d of %d file(s) denied", result.Summary.FilesDenied, result.Summary.FilesEvaluated)
	}

	if !result.Bypassed {
		if result.Summary.FilesSkipped > 0 {
			fmt.Fprintf(&sb, ", %d skipped", result.Summary.FilesSkipped)
		}
		sb.WriteString(")")
	}
	sb.WriteString("\n")

	_, err := io.WriteString(writer, sb.String())
	return err
}
