package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/regression"
	"github.com/manifoldco/promptui"
)

// severityStyles holds one styler per highlighted severity band
var severityStyles = map[int]func(interface{}) string{
	domain.SeverityCritical: promptui.Styler(promptui.FGRed, promptui.FGBold),
	domain.SeverityHigh:     promptui.Styler(promptui.FGRed),
	domain.SeverityMedium:   promptui.Styler(promptui.FGYellow),
	domain.SeverityLow:      promptui.Styler(promptui.FGCyan),
	domain.SeverityInfo:     promptui.Styler(promptui.FGGreen),
}

// HighlightSeverity wraps text in the color of its severity band.
// Severities outside 1..5 fall into the neutral band and are returned unchanged.
func HighlightSeverity(severity int, text string) string {
	style, ok := severityStyles[severity]
	if !ok {
		return text
	}
	return style(text)
}

// ReportFormatter renders per-file gate reports. It never fails.
type ReportFormatter struct {
	cfg domain.ReportConfig
}

// NewReportFormatter creates a formatter bound to one run's report policy
func NewReportFormatter(cfg domain.ReportConfig) *ReportFormatter {
	if cfg.Template == "" {
		cfg.Template = domain.DefaultViolationTemplate
	}
	return &ReportFormatter{cfg: cfg}
}

// Config returns the report policy the formatter was built with
func (f *ReportFormatter) Config() domain.ReportConfig {
	return f.cfg
}

// FormatStrict lists every violation of path, most severe first.
// With a cap K below the count N, the first K are listed followed by a "(K/N violations shown)" line.
func (f *ReportFormatter) FormatStrict(path string, violations []domain.Violation) string {
	if len(violations) == 0 {
		return ""
	}

	sorted := regression.SortViolations(violations)
	total := len(sorted)
	shown := sorted
	if f.capExceeded(total) {
		shown = sorted[:f.cfg.MaxViolations]
	}

	var sb strings.Builder
	for _, v := range shown {
		sb.WriteString(f.line(v.Severity, f.FormatViolation(path, v)))
	}
	if len(shown) < total {
		fmt.Fprintf(&sb, "(%d/%d violations shown)\n", len(shown), total)
	}
	return sb.String()
}

// FormatProgressive reports the regressions of path. The result is empty when
// regressions is empty. Otherwise the current violations come first (or a single
// notice when they exceed the cap) followed by one line per regressed rule.
func (f *ReportFormatter) FormatProgressive(path string, after []domain.Violation, regressions []domain.Regression) string {
	if len(regressions) == 0 {
		return ""
	}

	var sb strings.Builder
	if f.capExceeded(len(after)) {
		fmt.Fprintf(&sb, "too many violations (%d) in %s; run \"jsgate lint %s\" locally to list them\n", len(after), path, path)
	} else {
		sb.WriteString(f.FormatStrict(path, after))
	}

	fmt.Fprintf(&sb, "%s: new violations introduced:\n", path)
	for _, r := range regressions {
		sb.WriteString(f.line(r.Severity, FormatRegression(r)))
	}
	return sb.String()
}

// FormatRegression renders one regressed rule without styling
func FormatRegression(r domain.Regression) string {
	return fmt.Sprintf("  %s: at least %d fix(es) required (before: %d, after: %d, severity %d)",
		r.RuleID, r.MinFixesRequired, r.Before, r.After, r.Severity)
}

// FormatViolation expands the template for one violation
func (f *ReportFormatter) FormatViolation(path string, v domain.Violation) string {
	return ExpandTemplate(f.cfg.Template, path, v)
}

// ExpandTemplate substitutes %r %s %f %l %c %m and %%. Any other %x
// sequence, and a trailing lone %, is copied verbatim.
func ExpandTemplate(template, path string, v domain.Violation) string {
	var sb strings.Builder
	sb.Grow(len(template) + len(v.Message) + len(path))

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 == len(template) {
			sb.WriteByte(c)
			continue
		}

		i++
		switch template[i] {
		case 'r':
			sb.WriteString(v.RuleID)
		case 's':
			sb.WriteString(strconv.Itoa(v.Severity))
		case 'f':
			sb.WriteString(path)
		case 'l':
			sb.WriteString(strconv.Itoa(v.Line))
		case 'c':
			sb.WriteString(strconv.Itoa(v.Column))
		case 'm':
			sb.WriteString(v.Message)
		case '%':
			sb.WriteByte('%')
		default:
			sb.WriteByte('%')
			sb.WriteByte(template[i])
		}
	}
	return sb.String()
}

func (f *ReportFormatter) capExceeded(count int) bool {
	return f.cfg.MaxViolations > 0 && count > f.cfg.MaxViolations
}

func (f *ReportFormatter) line(severity int, text string) string {
	if f.cfg.HighlightBySeverity {
		text = HighlightSeverity(severity, text)
	}
	return text + "\n"
}
