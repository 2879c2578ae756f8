package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/farcloser/primordium/fault"

	"github.com/ludo-technologies/jsgate/domain"
)

// WorkingTreeProvider exposes files on disk as a change that adds every one
// of them, so each file is evaluated strictly.
type WorkingTreeProvider struct {
	root  string
	paths []string
}

// NewWorkingTreeProvider returns a provider over paths, resolved against root
func NewWorkingTreeProvider(root string, paths []string) *WorkingTreeProvider {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	return &WorkingTreeProvider{root: root, paths: slices.Compact(sorted)}
}

// Changes reports every path as added
func (w *WorkingTreeProvider) Changes(context.Context) (domain.ChangeSet, error) {
	return domain.ChangeSet{Added: slices.Clone(w.paths)}, nil
}

// Before is never consulted for added files; a working tree has no prior state
func (w *WorkingTreeProvider) Before(_ context.Context, path string) ([]byte, error) {
	return nil, fmt.Errorf("%w: no previous snapshot of %s in the working tree", fault.ErrReadFailure, path)
}

// After reads the file from disk
func (w *WorkingTreeProvider) After(_ context.Context, path string) ([]byte, error) {
	full := path
	if !filepath.IsAbs(path) && w.root != "" {
		full = filepath.Join(w.root, path)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	return content, nil
}

// CommitMessage is always empty
func (w *WorkingTreeProvider) CommitMessage(context.Context) (string, error) {
	return "", nil
}
