package service

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ciEnvVars are set by common CI runners; progress output is suppressed there
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE", "JENKINS_URL", "TF_BUILD"}

const (
	barWidth = 24

	// maxPathWidth bounds the file path shown next to the bar
	maxPathWidth = 40
)

// IsInteractiveEnvironment reports whether stderr is a terminal outside CI
func IsInteractiveEnvironment() bool {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return false
		}
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// NewProgressManager shows file evaluation progress on stderr when enabled
// and stderr is an interactive terminal. Otherwise nothing is rendered.
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return newTerminalProgress(os.Stderr)
	}
	return silentProgress{}
}

// terminalProgress draws one bar per evaluation pass
type terminalProgress struct {
	mu   sync.Mutex
	out  io.Writer
	bars []*progressbar.ProgressBar
}

func newTerminalProgress(out io.Writer) *terminalProgress {
	return &terminalProgress{out: out}
}

func (p *terminalProgress) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(barWidth),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	p.mu.Lock()
	p.bars = append(p.bars, bar)
	p.mu.Unlock()

	return &progressTask{bar: bar, label: description}
}

func (p *terminalProgress) IsInteractive() bool {
	return true
}

func (p *terminalProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, bar := range p.bars {
		_ = bar.Finish()
	}
	p.bars = nil
}

// progressTask counts evaluated files and names the one last started
type progressTask struct {
	bar   *progressbar.ProgressBar
	label string
}

func (t *progressTask) Increment(n int) {
	_ = t.bar.Add(n)
}

func (t *progressTask) Describe(path string) {
	t.bar.Describe(t.label + " " + shortenPath(path))
}

func (t *progressTask) Complete() {
	_ = t.bar.Finish()
}

// shortenPath keeps the tail of long paths, where the file name is
func shortenPath(path string) string {
	runes := []rune(path)
	if len(runes) <= maxPathWidth {
		return path
	}
	return "..." + string(runes[len(runes)-maxPathWidth+3:])
}

type silentProgress struct{}

func (silentProgress) StartTask(string, int) domain.TaskProgress { return silentTask{} }
func (silentProgress) IsInteractive() bool                      { return false }
func (silentProgress) Close()                                   {}

type silentTask struct{}

func (silentTask) Increment(int)   {}
func (silentTask) Describe(string) {}
func (silentTask) Complete()       {}
