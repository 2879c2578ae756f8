package vcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farcloser/primordium/fault"
)

func TestParseNameStatus(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		added    []string
		modified []string
		wantErr  bool
	}{
		{name: "empty", output: ""},
		{
			name:     "added and modified",
			output:   "A\x00src/new.js\x00M\x00src/old.ts\x00",
			added:    []string{"src/new.js"},
			modified: []string{"src/old.ts"},
		},
		{
			name:     "paths with spaces and tabs",
			output:   "M\x00dir with space/a\tb.js\x00",
			modified: []string{"dir with space/a\tb.js"},
		},
		{
			name:   "other statuses ignored",
			output: "D\x00gone.js\x00A\x00kept.js\x00T\x00link.js\x00",
			added:  []string{"kept.js"},
		},
		{name: "truncated", output: "A\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := parseNameStatus([]byte(tt.output))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(cs.Added, ",") != strings.Join(tt.added, ",") {
				t.Errorf("added: expected %v, got %v", tt.added, cs.Added)
			}
			if strings.Join(cs.Modified, ",") != strings.Join(tt.modified, ",") {
				t.Errorf("modified: expected %v, got %v", tt.modified, cs.Modified)
			}
		})
	}
}

func TestNewGitProvider_HalfRange(t *testing.T) {
	if _, err := NewGitProvider(GitOptions{From: "HEAD~1"}); err == nil {
		t.Error("expected error when only --from is set")
	}
}

// gitRepo creates a repository with one commit holding app.js
func gitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	git("init", "-q")
	write("app.js", "var a = 1;\n")
	git("add", "app.js")
	git("commit", "-q", "-m", "initial")

	write("app.js", "var a = 1;\nvar b = 2;\n")
	write("new.js", "let c = 3;\n")
	git("add", "app.js", "new.js")

	return dir
}

func TestGitProvider_Staged(t *testing.T) {
	dir := gitRepo(t)
	ctx := context.Background()

	g, err := NewGitProvider(GitOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewGitProvider failed: %v", err)
	}
	if g.IsRange() || g.Describe() != "staged" {
		t.Errorf("expected staged provider, got %s", g.Describe())
	}

	cs, err := g.Changes(ctx)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if len(cs.Added) != 1 || cs.Added[0] != "new.js" {
		t.Errorf("expected new.js added, got %v", cs.Added)
	}
	if len(cs.Modified) != 1 || cs.Modified[0] != "app.js" {
		t.Errorf("expected app.js modified, got %v", cs.Modified)
	}

	before, err := g.Before(ctx, "app.js")
	if err != nil {
		t.Fatalf("Before failed: %v", err)
	}
	if string(before) != "var a = 1;\n" {
		t.Errorf("unexpected before content %q", before)
	}

	after, err := g.After(ctx, "app.js")
	if err != nil {
		t.Fatalf("After failed: %v", err)
	}
	if !strings.Contains(string(after), "var b") {
		t.Errorf("unexpected after content %q", after)
	}

	msg, err := g.CommitMessage(ctx)
	if err != nil || msg != "" {
		t.Errorf("staged change has no message, got %q (%v)", msg, err)
	}
}

func TestGitProvider_Range(t *testing.T) {
	dir := gitRepo(t)
	ctx := context.Background()

	commit := exec.Command("git", "commit", "-q", "-m", "EMERGENCY: hotfix")
	commit.Dir = dir
	commit.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := commit.CombinedOutput(); err != nil {
		t.Fatalf("commit failed: %v\n%s", err, out)
	}

	g, err := NewGitProvider(GitOptions{Dir: dir, From: "HEAD~1", To: "HEAD"})
	if err != nil {
		t.Fatalf("NewGitProvider failed: %v", err)
	}

	cs, err := g.Changes(ctx)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if len(cs.Added) != 1 || len(cs.Modified) != 1 {
		t.Errorf("unexpected change set %+v", cs)
	}

	msg, err := g.CommitMessage(ctx)
	if err != nil {
		t.Fatalf("CommitMessage failed: %v", err)
	}
	if !strings.HasPrefix(msg, "EMERGENCY: hotfix") {
		t.Errorf("unexpected message %q", msg)
	}

	explicit, _ := NewGitProvider(GitOptions{Dir: dir, From: "HEAD~1", To: "HEAD", Message: "given"})
	if msg, _ := explicit.CommitMessage(ctx); msg != "given" {
		t.Errorf("explicit message should win, got %q", msg)
	}
}

func TestGitProvider_CommandFailure(t *testing.T) {
	dir := gitRepo(t)

	g, err := NewGitProvider(GitOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewGitProvider failed: %v", err)
	}

	_, err = g.Before(context.Background(), "does-not-exist.js")
	if !errors.Is(err, fault.ErrCommandFailure) {
		t.Errorf("expected ErrCommandFailure, got %v", err)
	}
}

func TestWorkingTreeProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.js"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.js"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWorkingTreeProvider(dir, []string{"b.js", "a.js", "b.js"})
	ctx := context.Background()

	cs, err := w.Changes(ctx)
	if err != nil {
		t.Fatalf("Changes failed: %v", err)
	}
	if strings.Join(cs.Added, ",") != "a.js,b.js" || len(cs.Modified) != 0 {
		t.Errorf("expected sorted unique added files, got %+v", cs)
	}

	content, err := w.After(ctx, "a.js")
	if err != nil || string(content) != "a" {
		t.Errorf("After: got %q, %v", content, err)
	}

	if _, err := w.After(ctx, "missing.js"); !errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("expected ErrReadFailure, got %v", err)
	}
	if _, err := w.Before(ctx, "a.js"); err == nil {
		t.Error("working tree has no before snapshot")
	}
	if msg, _ := w.CommitMessage(ctx); msg != "" {
		t.Errorf("expected empty message, got %q", msg)
	}
}
