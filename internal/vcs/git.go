package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/ludo-technologies/jsgate/domain"
)

const (
	gitBinary = "git"

	// DefaultTimeout bounds a single git invocation
	DefaultTimeout = 30 * time.Second
)

// GitOptions selects what change a GitProvider exposes.
// With From and To empty the staged index is compared against HEAD.
type GitOptions struct {
	// Dir is the working directory git runs in; "" means the current directory
	Dir string

	// From and To describe a revision range; both must be set together
	From string
	To   string

	// Message overrides the commit message (commit-msg hook, --message)
	Message string

	// Timeout bounds each git call, DefaultTimeout when zero
	Timeout time.Duration
}

// GitProvider reads changes and snapshots by running git
type GitProvider struct {
	opts    GitOptions
	gitPath string
}

// NewGitProvider checks that git is installed and returns a provider for opts
func NewGitProvider(opts GitOptions) (*GitProvider, error) {
	if (opts.From == "") != (opts.To == "") {
		return nil, domain.NewInvalidInputError("both --from and --to are required for a revision range", nil)
	}

	path, err := exec.LookPath(gitBinary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, gitBinary)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &GitProvider{opts: opts, gitPath: path}, nil
}

// IsRange reports whether the provider compares two revisions instead of the index
func (g *GitProvider) IsRange() bool {
	return g.opts.From != ""
}

// Describe returns a short label of the change under evaluation
func (g *GitProvider) Describe() string {
	if g.IsRange() {
		return g.opts.From + ".." + g.opts.To
	}
	return "staged"
}

// Changes lists added and modified paths. Renames and copies are not followed.
func (g *GitProvider) Changes(ctx context.Context) (domain.ChangeSet, error) {
	args := []string{"diff", "--name-status", "--diff-filter=AM", "-z", "--no-renames"}
	if g.IsRange() {
		args = append(args, g.opts.From, g.opts.To)
	} else {
		args = append(args, "--cached")
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return domain.ChangeSet{}, err
	}

	return parseNameStatus(out)
}

// Before returns the content of path prior to the change
func (g *GitProvider) Before(ctx context.Context, path string) ([]byte, error) {
	rev := "HEAD"
	if g.IsRange() {
		rev = g.opts.From
	}
	return g.run(ctx, "show", rev+":"+path)
}

// After returns the content of path as proposed by the change
func (g *GitProvider) After(ctx context.Context, path string) ([]byte, error) {
	if g.IsRange() {
		return g.run(ctx, "show", g.opts.To+":"+path)
	}
	// ":path" is the staged blob
	return g.run(ctx, "show", ":"+path)
}

// CommitMessage returns the explicit message if one was given, the log message
// of the range's last revision otherwise. A staged change has no message yet.
func (g *GitProvider) CommitMessage(ctx context.Context) (string, error) {
	if g.opts.Message != "" {
		return g.opts.Message, nil
	}
	if !g.IsRange() {
		return "", nil
	}

	out, err := g.run(ctx, "log", "-1", "--format=%B", g.opts.To)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (g *GitProvider) run(ctx context.Context, args ...string) ([]byte, error) {
	slog.Debug("git", "args", args, "dir", g.opts.Dir)

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	cmd.Dir = g.opts.Dir

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: git %s after %v", fault.ErrTimeout, args[0], g.opts.Timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, strings.TrimSpace(stderr.String()), err)
	}

	return output, nil
}

// parseNameStatus reads "git diff --name-status -z" output: STATUS NUL PATH NUL ...
func parseNameStatus(out []byte) (domain.ChangeSet, error) {
	var cs domain.ChangeSet

	fields := strings.Split(strings.TrimRight(string(out), "\x00"), "\x00")
	if len(fields) == 1 && fields[0] == "" {
		return cs, nil
	}
	if len(fields)%2 != 0 {
		return cs, fmt.Errorf("%w: unexpected name-status output %q", fault.ErrCommandFailure, string(out))
	}

	for i := 0; i < len(fields); i += 2 {
		status, path := strings.TrimSpace(fields[i]), fields[i+1]
		if status == "" || path == "" {
			continue
		}

		switch status[0] {
		case 'A':
			cs.Added = append(cs.Added, path)
		case 'M':
			cs.Modified = append(cs.Modified, path)
		default:
			slog.Debug("ignoring change", "status", status, "path", path)
		}
	}

	return cs, nil
}
