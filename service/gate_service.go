package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/regression"
)

// GateService decides whether a change may proceed
type GateService struct {
	snapshots domain.SnapshotProvider
	analyzer  domain.Analyzer
	profiles  domain.ProfileResolver
	bypass    domain.BypassDetector
	formatter *ReportFormatter
	executor  *ParallelExecutor
}

// NewGateService creates a gate for one run. bypass and executor may be nil:
// a nil bypass never fires and a nil executor evaluates with default concurrency.
func NewGateService(
	snapshots domain.SnapshotProvider,
	analyzer domain.Analyzer,
	profiles domain.ProfileResolver,
	bypass domain.BypassDetector,
	formatter *ReportFormatter,
	executor *ParallelExecutor,
) *GateService {
	if executor == nil {
		executor = NewParallelExecutor()
	}
	return &GateService{
		snapshots: snapshots,
		analyzer:  analyzer,
		profiles:  profiles,
		bypass:    bypass,
		formatter: formatter,
		executor:  executor,
	}
}

// Evaluate runs the gate over every changed file.
// The returned error is a DomainError (VCS_ERROR or ANALYSIS_ERROR) when a
// collaborator failed; no file is ever silently skipped because of an error.
func (s *GateService) Evaluate(ctx context.Context) (*domain.GateOutcome, error) {
	if s.bypass != nil {
		message, err := s.snapshots.CommitMessage(ctx)
		if err != nil {
			return nil, domain.NewVCSError("failed to read commit message", err)
		}
		if s.bypass(message) {
			slog.Info("emergency bypass requested, skipping evaluation")
			return &domain.GateOutcome{
				Verdict:  domain.GateVerdict{Allowed: true},
				Bypassed: true,
			}, nil
		}
	}

	changes, err := s.snapshots.Changes(ctx)
	if err != nil {
		return nil, domain.NewVCSError("failed to list changed files", err)
	}

	outcome := &domain.GateOutcome{}
	var tasks []domain.ExecutableTask
	for _, change := range changes.Files() {
		profile, ok := s.profiles.Resolve(change.Path)
		if !ok {
			slog.Debug("no profile matches, skipping file", "path", change.Path)
			outcome.Skipped = append(outcome.Skipped, change.Path)
			continue
		}
		tasks = append(tasks, &fileTask{gate: s, change: change, profile: profile})
	}

	results, err := s.executor.Execute(ctx, tasks)
	if err != nil {
		return nil, err
	}

	outcome.Reports = make([]domain.FileReport, 0, len(results))
	for _, r := range results {
		outcome.Reports = append(outcome.Reports, r.(domain.FileReport))
	}
	outcome.Verdict = Combine(outcome.Reports)

	return outcome, nil
}

// EvaluateFile runs one file under its evaluation mode: added files are always
// strict, modified files follow the configured mode.
func (s *GateService) EvaluateFile(ctx context.Context, change domain.FileChange, profile string) (domain.FileReport, error) {
	report := domain.FileReport{
		Path:    change.Path,
		Kind:    change.Kind,
		Profile: profile,
		Mode:    s.modeFor(change.Kind),
	}

	after, err := s.analyzeSnapshot(ctx, change.Path, profile, s.snapshots.After)
	if err != nil {
		return report, err
	}
	report.Violations = after

	var text string
	switch report.Mode {
	case domain.ModeProgressive:
		before, err := s.analyzeSnapshot(ctx, change.Path, profile, s.snapshots.Before)
		if err != nil {
			return report, err
		}
		report.Regressions = regression.Compare(before, after)
		text = s.formatter.FormatProgressive(change.Path, after, report.Regressions)
	default:
		text = s.formatter.FormatStrict(change.Path, after)
	}

	report.Verdict = domain.GateVerdict{Allowed: text == "", ReportText: text}
	slog.Debug("file evaluated",
		"path", change.Path,
		"mode", report.Mode,
		"violations", len(after),
		"regressions", len(report.Regressions),
		"allowed", report.Verdict.Allowed)

	return report, nil
}

// Combine folds per-file verdicts in report order
func Combine(reports []domain.FileReport) domain.GateVerdict {
	verdict := domain.GateVerdict{Allowed: true}
	for _, r := range reports {
		verdict = verdict.Combine(r.Verdict)
	}
	return verdict
}

func (s *GateService) modeFor(kind domain.ChangeKind) domain.Mode {
	if kind == domain.ChangeAdded {
		return domain.ModeStrict
	}
	return s.formatter.Config().Mode
}

func (s *GateService) analyzeSnapshot(
	ctx context.Context,
	path, profile string,
	read func(context.Context, string) ([]byte, error),
) ([]domain.Violation, error) {
	content, err := read(ctx, path)
	if err != nil {
		return nil, domain.NewVCSError(fmt.Sprintf("failed to read %s", path), err)
	}

	violations, err := s.analyzer.Analyze(ctx, path, content, profile)
	if err != nil {
		return nil, domain.NewAnalysisError(fmt.Sprintf("analyzer failed for %s", path), err)
	}
	return violations, nil
}

// fileTask adapts one file evaluation to the parallel executor
type fileTask struct {
	gate    *GateService
	change  domain.FileChange
	profile string
}

func (t *fileTask) Name() string {
	return t.change.Path
}

func (t *fileTask) Execute(ctx context.Context) (interface{}, error) {
	return t.gate.EvaluateFile(ctx, t.change, t.profile)
}

func (t *fileTask) IsEnabled() bool {
	return true
}
