package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Mode selects how a file is held to the analyzer's findings
type Mode string

const (
	// ModeStrict reports every current violation
	ModeStrict Mode = "strict"

	// ModeProgressive reports only rules whose occurrence count grew
	ModeProgressive Mode = "progressive"
)

// ParseMode converts a configuration value into a Mode
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeStrict:
		return ModeStrict, nil
	case ModeProgressive:
		return ModeProgressive, nil
	default:
		return "", NewValidationError(fmt.Sprintf("invalid mode '%s', must be one of: strict, progressive", value))
	}
}

// DefaultViolationTemplate renders one violation per line.
// Placeholders: %r rule, %s severity, %f file, %l line, %c column, %m message, %% percent.
const DefaultViolationTemplate = "%f:%l:%c: [%r] %m (severity %s)"

// ReportConfig is the per-run report policy. It is built once and only read afterwards.
type ReportConfig struct {
	Mode Mode

	// MaxViolations caps the per-file listing; 0 means no cap
	MaxViolations int

	// HighlightBySeverity colors each entry by its severity band
	HighlightBySeverity bool

	// Template renders a single violation, DefaultViolationTemplate when empty
	Template string
}

// GateVerdict is the externally observable outcome for one file or a whole run
type GateVerdict struct {
	Allowed    bool   `json:"allowed" yaml:"allowed"`
	ReportText string `json:"report_text,omitempty" yaml:"report_text,omitempty"`
}

// Combine merges two verdicts: allowed only if both are, report texts concatenated in order
func (v GateVerdict) Combine(other GateVerdict) GateVerdict {
	return GateVerdict{
		Allowed:    v.Allowed && other.Allowed,
		ReportText: v.ReportText + other.ReportText,
	}
}

// ChangeKind tells whether a path is new in the change or already existed
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
)

// FileChange is one path touched by the change under evaluation
type FileChange struct {
	Path string
	Kind ChangeKind
}

// ChangeSet lists the paths a change adds and modifies
type ChangeSet struct {
	Added    []string
	Modified []string
}

// Files returns every change ordered lexically by path
func (cs ChangeSet) Files() []FileChange {
	files := make([]FileChange, 0, len(cs.Added)+len(cs.Modified))
	for _, p := range cs.Added {
		files = append(files, FileChange{Path: p, Kind: ChangeAdded})
	}
	for _, p := range cs.Modified {
		files = append(files, FileChange{Path: p, Kind: ChangeModified})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}

// IsEmpty reports whether the change touches no files
func (cs ChangeSet) IsEmpty() bool {
	return len(cs.Added) == 0 && len(cs.Modified) == 0
}

// FileReport is the evaluation result of a single file
type FileReport struct {
	Path        string
	Kind        ChangeKind
	Profile     string
	Mode        Mode
	Violations  []Violation
	Regressions []Regression
	Verdict     GateVerdict
}

// GateOutcome is the decided state of a gate run
type GateOutcome struct {
	Verdict  GateVerdict
	Bypassed bool
	Reports  []FileReport
	Skipped  []string
}

// Analyzer turns file content into violations using a named configuration profile
type Analyzer interface {
	Analyze(ctx context.Context, path string, content []byte, profile string) ([]Violation, error)
}

// SnapshotProvider exposes the change under evaluation
type SnapshotProvider interface {
	// Changes enumerates added and modified paths
	Changes(ctx context.Context) (ChangeSet, error)

	// Before returns a file's content prior to the change
	Before(ctx context.Context, path string) ([]byte, error)

	// After returns a file's content as proposed by the change
	After(ctx context.Context, path string) ([]byte, error)

	// CommitMessage returns the log message of the change, "" when there is none yet
	CommitMessage(ctx context.Context) (string, error)
}

// ProfileResolver maps a path to an analyzer profile; ok is false when the file must be skipped
type ProfileResolver interface {
	Resolve(path string) (profile string, ok bool)
}

// BypassDetector decides from a commit log message whether the emergency bypass applies
type BypassDetector func(logMessage string) bool
