// Package testutil provides helpers and in-memory collaborators for testing jsgate components
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ludo-technologies/jsgate/domain"
)

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertErrorCode fails the test unless err carries the given DomainError code
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if got := domain.ErrorCode(err); got != code {
		t.Fatalf("Expected error code %s, got %q (%v)", code, got, err)
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}

// V builds a violation with a message derived from its fields
func V(rule string, severity, line, column int) domain.Violation {
	return domain.Violation{
		RuleID:   rule,
		Severity: severity,
		Line:     line,
		Column:   column,
		Message:  fmt.Sprintf("%s at %d", rule, line),
	}
}

// Repeat returns n copies of v on consecutive lines starting at v.Line
func Repeat(v domain.Violation, n int) []domain.Violation {
	vs := make([]domain.Violation, n)
	for i := range vs {
		vs[i] = v
		vs[i].Line = v.Line + i
	}
	return vs
}

// ErrNotFound is returned by Snapshots for unknown paths
var ErrNotFound = errors.New("no such snapshot")

// Snapshots is an in-memory domain.SnapshotProvider
type Snapshots struct {
	Change  domain.ChangeSet
	Old     map[string]string
	New     map[string]string
	Message string

	ChangesErr error
	MessageErr error
	ReadErr    error

	mu    sync.Mutex
	reads []string
}

var _ domain.SnapshotProvider = (*Snapshots)(nil)

// Changes returns the configured change set
func (s *Snapshots) Changes(context.Context) (domain.ChangeSet, error) {
	return s.Change, s.ChangesErr
}

// Before returns the old content of path
func (s *Snapshots) Before(_ context.Context, path string) ([]byte, error) {
	return s.read("before:"+path, s.Old, path)
}

// After returns the new content of path
func (s *Snapshots) After(_ context.Context, path string) ([]byte, error) {
	return s.read("after:"+path, s.New, path)
}

// CommitMessage returns the configured message
func (s *Snapshots) CommitMessage(context.Context) (string, error) {
	return s.Message, s.MessageErr
}

// Reads lists every snapshot read as "before:PATH" or "after:PATH"
func (s *Snapshots) Reads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reads...)
}

func (s *Snapshots) read(key string, contents map[string]string, path string) ([]byte, error) {
	s.mu.Lock()
	s.reads = append(s.reads, key)
	s.mu.Unlock()

	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	content, ok := contents[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return []byte(content), nil
}

// Analyzer is a domain.Analyzer returning canned violations keyed by file content
type Analyzer struct {
	Results map[string][]domain.Violation
	Errors  map[string]error

	mu    sync.Mutex
	calls int
}

var _ domain.Analyzer = (*Analyzer)(nil)

// Analyze looks up content in Results; unknown content has no violations
func (a *Analyzer) Analyze(_ context.Context, _ string, content []byte, _ string) ([]domain.Violation, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	if err, ok := a.Errors[string(content)]; ok {
		return nil, err
	}
	return a.Results[string(content)], nil
}

// Calls returns how many times Analyze ran
func (a *Analyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Profiles is a domain.ProfileResolver backed by a map; unknown paths use Default
type Profiles struct {
	ByPath  map[string]string
	Default string
}

var _ domain.ProfileResolver = Profiles{}

// Resolve returns the profile of path; an empty profile skips the file
func (p Profiles) Resolve(path string) (string, bool) {
	profile, ok := p.ByPath[path]
	if !ok {
		profile = p.Default
	}
	return profile, profile != ""
}
