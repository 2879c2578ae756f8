package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
)

// DefaultESLintCommand lints stdin and reports JSON; "{path}" names the file for ESLint's config lookup
var DefaultESLintCommand = []string{
	"npx", "--no-install", "eslint",
	"--format", "json",
	"--stdin", "--stdin-filename", constants.PathPlaceholder,
}

// DefaultESLintTimeout bounds one ESLint invocation
const DefaultESLintTimeout = 2 * time.Minute

// eslintExitLintErrors is ESLint's exit code when it ran and found errors
const eslintExitLintErrors = 1

// ESLintMessage is one entry of ESLint's JSON formatter output
type ESLintMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Fatal    bool   `json:"fatal"`
}

// ESLintResult is ESLint's JSON output for one file
type ESLintResult struct {
	FilePath string          `json:"filePath"`
	Messages []ESLintMessage `json:"messages"`
}

// ESLintAnalyzer runs an ESLint command and maps its findings to violations
type ESLintAnalyzer struct {
	command         []string
	dir             string
	timeout         time.Duration
	errorSeverity   int
	warningSeverity int
	minSeverity     int
}

// NewESLintAnalyzer builds an analyzer from a profile. dir is where the command runs.
func NewESLintAnalyzer(profile config.ProfileConfig, dir string) *ESLintAnalyzer {
	command := profile.Command
	if len(command) == 0 {
		command = DefaultESLintCommand
	}

	return &ESLintAnalyzer{
		command:         command,
		dir:             dir,
		timeout:         DefaultESLintTimeout,
		errorSeverity:   profile.ESLintErrorSeverity,
		warningSeverity: profile.ESLintWarningSeverity,
		minSeverity:     profile.MinSeverity,
	}
}

// Analyze pipes content to ESLint
func (a *ESLintAnalyzer) Analyze(ctx context.Context, path string, content []byte) ([]domain.Violation, error) {
	args := make([]string, len(a.command))
	for i, arg := range a.command {
		args[i] = strings.ReplaceAll(arg, constants.PathPlaceholder, path)
	}

	slog.Debug("eslint", "file path", path, "command", args)

	binPath, err := exec.LookPath(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, args[0])
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	//nolint:gosec // the command comes from the project's own configuration
	cmd := exec.CommandContext(ctx, binPath, args[1:]...)
	cmd.Dir = a.dir
	cmd.Stdin = bytes.NewReader(content)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, a.timeout)
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != eslintExitLintErrors {
			return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, strings.TrimSpace(stderr.String()), err)
		}
	}

	return a.parse(output)
}

func (a *ESLintAnalyzer) parse(output []byte) ([]domain.Violation, error) {
	var results []ESLintResult
	if err := json.Unmarshal(output, &results); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	var violations []domain.Violation
	for _, r := range results {
		for _, m := range r.Messages {
			v, ok := a.convert(m)
			if !ok || v.Severity < a.minSeverity {
				continue
			}
			violations = append(violations, v)
		}
	}

	return violations, nil
}

func (a *ESLintAnalyzer) convert(m ESLintMessage) (domain.Violation, bool) {
	v := domain.Violation{
		RuleID:  m.RuleID,
		Line:    m.Line,
		Column:  m.Column,
		Message: m.Message,
	}

	switch {
	case m.Fatal:
		v.RuleID = constants.RuleParseError
		v.Severity = domain.SeverityCritical
	case m.RuleID == "":
		// notices such as "File ignored because of a matching ignore pattern"
		slog.Debug("eslint notice", "message", m.Message)
		return v, false
	case m.Severity >= 2:
		v.Severity = a.errorSeverity
	default:
		v.Severity = a.warningSeverity
	}

	return v, true
}
