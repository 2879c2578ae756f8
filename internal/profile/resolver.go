// Package profile maps file paths to analyzer profiles.
package profile

import (
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/jsgate/internal/config"
	ignore "github.com/sabhiram/go-gitignore"
)

type entry struct {
	pattern string
	profile string
	matcher *ignore.GitIgnore
}

// Resolver evaluates ordered pattern/profile pairs; the last matching pair wins
type Resolver struct {
	entries []entry
}

// NewResolver compiles the configured path rules
func NewResolver(rules []config.PathRule) *Resolver {
	r := &Resolver{entries: make([]entry, 0, len(rules))}
	for _, rule := range rules {
		r.entries = append(r.entries, entry{
			pattern: rule.Pattern,
			profile: rule.Profile,
			matcher: ignore.CompileIgnoreLines(rule.Pattern),
		})
	}
	return r
}

// Resolve returns the profile of the last matching rule. ok is false when no
// rule matches or the winning rule has no profile.
func (r *Resolver) Resolve(path string) (string, bool) {
	normalized := normalize(path)
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.matcher.MatchesPath(normalized) {
			return e.profile, e.profile != ""
		}
	}
	return "", false
}

// Excluded reports whether path is matched and the winning rule excludes it.
// A path no rule matches is not excluded.
func (r *Resolver) Excluded(path string) bool {
	normalized := normalize(path)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].matcher.MatchesPath(normalized) {
			return r.entries[i].profile == ""
		}
	}
	return false
}

func normalize(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "./")
}
