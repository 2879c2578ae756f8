package app

import (
	"context"
	"io"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/profile"
	"github.com/ludo-technologies/jsgate/internal/vcs"
)

// LintRevision describes a working tree run
const LintRevision = "working-tree"

// LintRequest describes a strict evaluation of files on disk
type LintRequest struct {
	Config *config.Config
	Paths  []string
	Dir    string
	Report io.Writer
	Output io.Writer

	ShowProgress bool
}

// LintUseCase evaluates working-tree files strictly, listing every violation.
// It never consults the bypass and never writes to the journal.
type LintUseCase struct {
	gate       *GateUseCase
	fileHelper *FileHelper
}

// NewLintUseCase creates a lint use case running on gate
func NewLintUseCase(gate *GateUseCase) *LintUseCase {
	return &LintUseCase{
		gate:       gate,
		fileHelper: NewFileHelper(),
	}
}

// Execute collects the files under req.Paths and evaluates them
func (uc *LintUseCase) Execute(ctx context.Context, req LintRequest) (*domain.GateResult, error) {
	if req.Config == nil {
		return nil, domain.NewInvalidInputError("configuration is required", nil)
	}

	paths := req.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := uc.fileHelper.CollectFiles(paths, profile.NewResolver(req.Config.Paths))
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}

	return uc.gate.Execute(ctx, GateRequest{
		Config:       req.Config,
		Snapshots:    vcs.NewWorkingTreeProvider("", files),
		Revision:     LintRevision,
		Dir:          req.Dir,
		Report:       req.Report,
		Output:       req.Output,
		ShowProgress: req.ShowProgress,
		IgnoreBypass: true,
		SkipJournal:  true,
	})
}
