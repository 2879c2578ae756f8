package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/analyzer"
	"github.com/ludo-technologies/jsgate/internal/bypass"
	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/ludo-technologies/jsgate/internal/journal"
	"github.com/ludo-technologies/jsgate/internal/profile"
	"github.com/ludo-technologies/jsgate/internal/version"
	"github.com/ludo-technologies/jsgate/service"
)

// Recorder persists the result of a run and returns its id
type Recorder interface {
	Record(ctx context.Context, result *domain.GateResult) (string, error)
}

// GateRequest describes one gate run
type GateRequest struct {
	// Config is the merged run configuration
	Config *config.Config

	// Snapshots exposes the change under evaluation
	Snapshots domain.SnapshotProvider

	// Revision describes the change for the result and the journal
	Revision string

	// Dir is the working directory of external analyzers
	Dir string

	// Report receives the human report, Output the machine output
	Report io.Writer
	Output io.Writer

	ShowProgress bool

	// IgnoreBypass disables the emergency bypass regardless of configuration
	IgnoreBypass bool

	// SkipJournal keeps the run out of the decision journal
	SkipJournal bool
}

// GateUseCase wires configuration, analyzers and snapshots into a GateService run
type GateUseCase struct {
	analyzer  domain.Analyzer
	recorder  Recorder
	formatter *service.OutputFormatter
	now       func() time.Time
}

// NewGateUseCase creates a use case that builds its analyzers from the run configuration
func NewGateUseCase() *GateUseCase {
	return &GateUseCase{
		formatter: service.NewOutputFormatter(),
		now:       time.Now,
	}
}

// Execute evaluates the change and writes its report. The returned result
// carries the exit code; an error means the run could not decide and is
// mapped by ExitCodeForError.
func (uc *GateUseCase) Execute(ctx context.Context, req GateRequest) (*domain.GateResult, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid gate request", err)
	}
	cfg := req.Config

	reportConfig, err := service.BuildReportConfig(cfg)
	if err != nil {
		return nil, err
	}
	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	fileAnalyzer := uc.analyzer
	if fileAnalyzer == nil {
		dispatcher, err := analyzer.NewDispatcher(cfg.Profiles, req.Dir)
		if err != nil {
			return nil, err
		}
		fileAnalyzer = dispatcher
	}

	detector := bypass.NewDetector(cfg.Gate.AllowEmergencyBypass && !req.IgnoreBypass, cfg.Gate.EmergencyCommentPrefix)

	pm := service.NewProgressManager(req.ShowProgress && format == domain.OutputFormatText)
	defer pm.Close()

	gate := service.NewGateService(
		req.Snapshots,
		fileAnalyzer,
		profile.NewResolver(cfg.Paths),
		detector,
		service.NewReportFormatter(reportConfig),
		service.NewParallelExecutorWithProgress(&cfg.Performance, pm),
	)

	start := uc.now()
	outcome, err := gate.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.NewGateResult(outcome, reportConfig.Mode)
	result.Revision = req.Revision
	result.Duration = uc.now().Sub(start).Milliseconds()
	result.Version = version.GetVersion()
	result.GeneratedAt = uc.now().UTC().Format(time.RFC3339)
	result.ExitCode = constants.ExitAllow
	if !result.Allowed {
		result.ExitCode = constants.ExitDeny
	}

	if outcome.Verdict.ReportText != "" {
		if _, err := io.WriteString(req.Report, outcome.Verdict.ReportText); err != nil {
			return nil, domain.NewOutputError("failed to write report", err)
		}
	}

	if !req.SkipJournal {
		uc.record(ctx, cfg.Journal.Path, result)
	}

	if err := uc.formatter.Write(result, format, req.Output); err != nil {
		return nil, err
	}

	return result, nil
}

// record stores the run in the journal. Journal failures never change the verdict.
func (uc *GateUseCase) record(ctx context.Context, path string, result *domain.GateResult) {
	recorder := uc.recorder
	if recorder == nil {
		if path == "" {
			return
		}
		j, err := journal.Open(path)
		if err != nil {
			slog.Warn("decision journal unavailable", "path", path, "error", err)
			return
		}
		defer j.Close()
		recorder = j
	}

	runID, err := recorder.Record(ctx, result)
	if err != nil {
		slog.Warn("failed to record run in decision journal", "error", err)
		return
	}
	result.RunID = runID
	slog.Debug("run recorded", "run_id", runID)
}

func (uc *GateUseCase) validateRequest(req GateRequest) error {
	if req.Config == nil {
		return fmt.Errorf("configuration is required")
	}
	if req.Snapshots == nil {
		return fmt.Errorf("snapshot provider is required")
	}
	if req.Report == nil || req.Output == nil {
		return fmt.Errorf("report and output writers are required")
	}
	return nil
}

// ExitCodeForError maps a failed run to a process exit code: an analyzer
// failure denies the change, anything else is unrecoverable.
func ExitCodeForError(err error) int {
	if domain.ErrorCode(err) == domain.ErrCodeAnalysisError {
		return constants.ExitDeny
	}
	return constants.ExitUnrecoverable
}

// GateUseCaseBuilder provides a builder pattern for creating GateUseCase
type GateUseCaseBuilder struct {
	analyzer  domain.Analyzer
	recorder  Recorder
	formatter *service.OutputFormatter
	now       func() time.Time
}

// NewGateUseCaseBuilder creates a new builder
func NewGateUseCaseBuilder() *GateUseCaseBuilder {
	return &GateUseCaseBuilder{}
}

// WithAnalyzer replaces the configured analyzers
func (b *GateUseCaseBuilder) WithAnalyzer(a domain.Analyzer) *GateUseCaseBuilder {
	b.analyzer = a
	return b
}

// WithRecorder replaces the journal configured by journal.path
func (b *GateUseCaseBuilder) WithRecorder(r Recorder) *GateUseCaseBuilder {
	b.recorder = r
	return b
}

// WithOutputFormatter sets the machine output formatter
func (b *GateUseCaseBuilder) WithOutputFormatter(f *service.OutputFormatter) *GateUseCaseBuilder {
	b.formatter = f
	return b
}

// WithClock sets the time source used for durations and timestamps
func (b *GateUseCaseBuilder) WithClock(now func() time.Time) *GateUseCaseBuilder {
	b.now = now
	return b
}

// Build creates the GateUseCase with the configured dependencies
func (b *GateUseCaseBuilder) Build() *GateUseCase {
	uc := NewGateUseCase()
	if b.analyzer != nil {
		uc.analyzer = b.analyzer
	}
	if b.recorder != nil {
		uc.recorder = b.recorder
	}
	if b.formatter != nil {
		uc.formatter = b.formatter
	}
	if b.now != nil {
		uc.now = b.now
	}
	return uc
}
