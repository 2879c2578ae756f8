package domain

// GateResult is the machine-readable result of a check run
type GateResult struct {
	Allowed     bool          `json:"allowed" yaml:"allowed"`
	Bypassed    bool          `json:"bypassed" yaml:"bypassed"`
	ExitCode    int           `json:"exit_code" yaml:"exit_code"`
	Mode        Mode          `json:"mode" yaml:"mode"`
	Revision    string        `json:"revision" yaml:"revision"`
	RunID       string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Files       []FileSummary `json:"files" yaml:"files"`
	Skipped     []string      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Summary     GateSummary   `json:"summary" yaml:"summary"`
	Duration    int64         `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	Version     string        `json:"version" yaml:"version"`
}

// FileSummary condenses one FileReport
type FileSummary struct {
	Path        string       `json:"path" yaml:"path"`
	Kind        ChangeKind   `json:"kind" yaml:"kind"`
	Mode        Mode         `json:"mode" yaml:"mode"`
	Profile     string       `json:"profile" yaml:"profile"`
	Allowed     bool         `json:"allowed" yaml:"allowed"`
	Violations  int          `json:"violations" yaml:"violations"`
	Regressions []Regression `json:"regressions,omitempty" yaml:"regressions,omitempty"`
}

// GateSummary provides aggregate statistics
type GateSummary struct {
	FilesChanged     int `json:"files_changed" yaml:"files_changed"`
	FilesEvaluated   int `json:"files_evaluated" yaml:"files_evaluated"`
	FilesSkipped     int `json:"files_skipped" yaml:"files_skipped"`
	FilesDenied      int `json:"files_denied" yaml:"files_denied"`
	TotalViolations  int `json:"total_violations" yaml:"total_violations"`
	TotalRegressions int `json:"total_regressions" yaml:"total_regressions"`
}

// NewGateResult builds the summary view of an outcome
func NewGateResult(outcome *GateOutcome, mode Mode) *GateResult {
	result := &GateResult{
		Allowed:  outcome.Verdict.Allowed,
		Bypassed: outcome.Bypassed,
		Mode:     mode,
		Files:    make([]FileSummary, 0, len(outcome.Reports)),
		Skipped:  outcome.Skipped,
	}

	for _, r := range outcome.Reports {
		result.Files = append(result.Files, FileSummary{
			Path:        r.Path,
			Kind:        r.Kind,
			Mode:        r.Mode,
			Profile:     r.Profile,
			Allowed:     r.Verdict.Allowed,
			Violations:  len(r.Violations),
			Regressions: r.Regressions,
		})
		result.Summary.TotalViolations += len(r.Violations)
		result.Summary.TotalRegressions += len(r.Regressions)
		if !r.Verdict.Allowed {
			result.Summary.FilesDenied++
		}
	}

	result.Summary.FilesEvaluated = len(outcome.Reports)
	result.Summary.FilesSkipped = len(outcome.Skipped)
	result.Summary.FilesChanged = result.Summary.FilesEvaluated + result.Summary.FilesSkipped

	return result
}
