package analyzer

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ludo-technologies/jsgate/domain"
	"github.com/ludo-technologies/jsgate/internal/config"
	"github.com/ludo-technologies/jsgate/internal/constants"
	"github.com/ludo-technologies/jsgate/internal/parser"
)

// BuiltinAnalyzer checks sources with the tree-sitter rule catalog
type BuiltinAnalyzer struct {
	rules ruleSet
}

// NewBuiltinAnalyzer applies a profile's overrides to the rule catalog
func NewBuiltinAnalyzer(profile config.ProfileConfig) *BuiltinAnalyzer {
	return &BuiltinAnalyzer{rules: newRuleSet(profile)}
}

// Analyze parses content and returns its violations in source order
func (a *BuiltinAnalyzer) Analyze(ctx context.Context, path string, content []byte) ([]domain.Violation, error) {
	f, err := parser.ParseForPath(ctx, path, content)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := &checker{file: f, rules: a.rules}
	c.run()

	return c.violations, nil
}

type checker struct {
	file       *parser.File
	rules      ruleSet
	violations []domain.Violation
}

func (c *checker) report(rule string, n *sitter.Node, format string, args ...any) {
	if !c.rules.enabled(rule) {
		return
	}
	severity := c.rules.get(rule).severity
	if !c.rules.keeps(severity) {
		return
	}

	line, column := parser.Position(n)
	c.violations = append(c.violations, domain.Violation{
		RuleID:   rule,
		Severity: severity,
		Line:     line,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) run() {
	for _, n := range parser.SyntaxErrors(c.file.Root) {
		if n.IsMissing() {
			c.report(constants.RuleParseError, n, "missing %s", n.Type())
		} else {
			c.report(constants.RuleParseError, n, "unexpected syntax")
		}
	}

	parser.Walk(c.file.Root, func(n *sitter.Node, _ int) bool {
		c.visit(n)
		return true
	})
}

func (c *checker) visit(n *sitter.Node) {
	switch n.Type() {
	case "call_expression":
		c.checkCall(n)
	case "debugger_statement":
		c.report(constants.RuleNoDebugger, n, "unexpected 'debugger' statement")
	case "binary_expression":
		c.checkEquality(n)
	case "variable_declaration":
		c.report(constants.RuleNoVar, n, "unexpected var, use let or const instead")
	case "statement_block":
		c.checkEmptyBlock(n)
	}

	if isStatementList(n) {
		c.checkUnreachable(n)
	}
	if isNestedFunction(n) {
		c.checkFunction(n)
	}
}

func (c *checker) checkCall(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Type() {
	case "identifier":
		if c.file.Text(fn) == "eval" {
			c.report(constants.RuleNoEval, n, "eval can be harmful")
		}
	case "member_expression":
		obj := fn.ChildByFieldName("object")
		prop := fn.ChildByFieldName("property")
		if obj != nil && prop != nil && obj.Type() == "identifier" && c.file.Text(obj) == "console" {
			c.report(constants.RuleNoConsole, n, "unexpected console.%s call", c.file.Text(prop))
		}
	}
}

func (c *checker) checkEquality(n *sitter.Node) {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return
	}
	switch op.Type() {
	case "==":
		c.report(constants.RuleEqeqeq, op, "expected '===' and instead saw '=='")
	case "!=":
		c.report(constants.RuleEqeqeq, op, "expected '!==' and instead saw '!='")
	}
}

func (c *checker) checkEmptyBlock(n *sitter.Node) {
	if n.NamedChildCount() > 0 {
		return
	}
	// empty function bodies are allowed
	if p := n.Parent(); p != nil && (isNestedFunction(p) || p.Type() == "class_static_block") {
		return
	}
	c.report(constants.RuleNoEmptyBlock, n, "empty block statement")
}

// checkUnreachable reports the first statement following a jump in a statement list
func (c *checker) checkUnreachable(list *sitter.Node) {
	jumped := false
	for i := 0; i < int(list.NamedChildCount()); i++ {
		stmt := list.NamedChild(i)
		if jumped {
			if isHoisted(stmt) {
				continue
			}
			c.report(constants.RuleNoUnreachable, stmt, "unreachable code")
			return
		}
		if isJump(stmt) {
			jumped = true
		}
	}
}

func (c *checker) checkFunction(fn *sitter.Node) {
	name := functionName(c.file, fn)

	if s := c.rules.get(constants.RuleMaxParams); s.enabled {
		if params := countParams(fn); params > s.threshold {
			c.report(constants.RuleMaxParams, fn, "function '%s' has too many parameters (%d), maximum allowed is %d", name, params, s.threshold)
		}
	}

	if s := c.rules.get(constants.RuleMaxComplexity); s.enabled {
		if complexity := CalculateComplexity(fn); complexity > s.threshold {
			c.report(constants.RuleMaxComplexity, fn, "function '%s' has a complexity of %d, maximum allowed is %d", name, complexity, s.threshold)
		}
	}

	if s := c.rules.get(constants.RuleMaxDepth); s.enabled {
		if depth := CalculateNestingDepth(fn.ChildByFieldName("body")); depth > s.threshold {
			c.report(constants.RuleMaxDepth, fn, "function '%s' nests blocks too deeply (%d), maximum allowed is %d", name, depth, s.threshold)
		}
	}
}
