package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/ludo-technologies/jsgate/internal/parser"
)

// excludeProbe is joined to a directory to ask whether everything below it is excluded
const excludeProbe = ".jsgate-probe.js"

// Excluder reports whether a path is excluded from evaluation
type Excluder interface {
	Excluded(path string) bool
}

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectFiles expands paths into JavaScript/TypeScript files. Files named
// explicitly are kept whatever their extension; directories are walked
// recursively and directories the excluder rejects are not entered.
// The result is sorted and free of duplicates.
func (h *FileHelper) CollectFiles(paths []string, excluder Excluder) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, filepath.Clean(path))
			continue
		}

		err = filepath.WalkDir(path, func(filePath string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if filePath != path && h.isExcludedDir(filePath, excluder) {
					return filepath.SkipDir
				}
				return nil
			}

			if parser.IsSupported(filePath) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// IsValidJSFile checks if a file is a valid JavaScript/TypeScript file
func (h *FileHelper) IsValidJSFile(path string) bool {
	return parser.IsSupported(path)
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (h *FileHelper) isExcludedDir(dir string, excluder Excluder) bool {
	if excluder == nil {
		return false
	}
	return excluder.Excluded(filepath.Join(dir, excludeProbe))
}
