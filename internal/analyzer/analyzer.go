// Package analyzer turns JavaScript and TypeScript sources into violations.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
)

// FileAnalyzer analyzes one file under a fixed profile
type FileAnalyzer interface {
	Analyze(ctx context.Context, path string, content []byte) ([]domain.Violation, error)
}

// Dispatcher routes each file to the analyzer of its profile
type Dispatcher struct {
	analyzers map[string]FileAnalyzer
}

var _ domain.Analyzer = (*Dispatcher)(nil)

// NewDispatcher builds one analyzer per configured profile.
// dir is the working directory of external analyzers.
func NewDispatcher(profiles map[string]config.ProfileConfig, dir string) (*Dispatcher, error) {
	d := &Dispatcher{analyzers: make(map[string]FileAnalyzer, len(profiles))}

	for name, profile := range profiles {
		switch profile.Analyzer {
		case constants.AnalyzerBuiltin, "":
			d.analyzers[strings.ToLower(name)] = NewBuiltinAnalyzer(profile)
		case constants.AnalyzerESLint:
			d.analyzers[strings.ToLower(name)] = NewESLintAnalyzer(profile, dir)
		default:
			return nil, domain.NewConfigError(fmt.Sprintf("profile '%s' uses unknown analyzer '%s'", name, profile.Analyzer), nil)
		}
	}

	return d, nil
}

// Register replaces the analyzer of a profile
func (d *Dispatcher) Register(profile string, a FileAnalyzer) {
	d.analyzers[strings.ToLower(profile)] = a
}

// Analyze implements domain.Analyzer
func (d *Dispatcher) Analyze(ctx context.Context, path string, content []byte, profile string) ([]domain.Violation, error) {
	a, ok := d.analyzers[strings.ToLower(profile)]
	if !ok {
		return nil, fmt.Errorf("no analyzer for profile '%s'", profile)
	}
	return a.Analyze(ctx, path, content)
}
