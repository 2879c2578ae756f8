package analyzer

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ludo-technologies/jsgate/internal/parser"
)

// ComplexityResult holds the metrics of one function or method
type ComplexityResult struct {
	FunctionName string
	StartLine    int
	StartCol     int
	EndLine      int

	Complexity   int
	NestingDepth int
	Params       int

	IfStatements      int
	LoopStatements    int
	ExceptionHandlers int
	SwitchCases       int
	LogicalOperators  int
	TernaryOperators  int
}

func (cr *ComplexityResult) String() string {
	return fmt.Sprintf("Function: %s, Complexity: %d, Depth: %d, Params: %d",
		cr.FunctionName, cr.Complexity, cr.NestingDepth, cr.Params)
}

// AnalyzeFunctions measures every function in f, outermost first in source order
func AnalyzeFunctions(f *parser.File) []*ComplexityResult {
	var results []*ComplexityResult

	parser.Walk(f.Root, func(n *sitter.Node, _ int) bool {
		if isNestedFunction(n) {
			results = append(results, measureFunction(f, n))
		}
		return true
	})

	return results
}

func measureFunction(f *parser.File, fn *sitter.Node) *ComplexityResult {
	line, col := parser.Position(fn)
	result := &ComplexityResult{
		FunctionName: functionName(f, fn),
		StartLine:    line,
		StartCol:     col,
		EndLine:      int(fn.EndPoint().Row) + 1,
		Params:       countParams(fn),
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		result.Complexity = 1
		return result
	}

	countDecisions(body, result)
	result.Complexity++
	result.NestingDepth = CalculateNestingDepth(body)

	return result
}

// CalculateComplexity returns the McCabe complexity of a function node
func CalculateComplexity(fn *sitter.Node) int {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return 1
	}
	var r ComplexityResult
	countDecisions(body, &r)
	return r.Complexity + 1
}

func countDecisions(body *sitter.Node, result *ComplexityResult) {
	parser.Walk(body, func(n *sitter.Node, _ int) bool {
		if n != body && isNestedFunction(n) {
			return false
		}

		switch classifyDecision(n) {
		case decisionIf:
			result.IfStatements++
		case decisionLoop:
			result.LoopStatements++
		case decisionCase:
			result.SwitchCases++
		case decisionCatch:
			result.ExceptionHandlers++
		case decisionLogical:
			result.LogicalOperators++
		case decisionTernary:
			result.TernaryOperators++
		default:
			return true
		}
		result.Complexity++
		return true
	})
}

// CalculateNestingDepth calculates the maximum nesting depth of control
// structures below node, without entering nested functions
func CalculateNestingDepth(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return nestingDepth(node, node, 0)
}

func nestingDepth(root, n *sitter.Node, current int) int {
	if n != root && isNestedFunction(n) {
		return 0
	}
	if isControlStructure(n) {
		current++
	}

	deepest := current
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if d := nestingDepth(root, n.NamedChild(i), current); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func countParams(fn *sitter.Node) int {
	// "x => x" has a single bare parameter
	if fn.ChildByFieldName("parameter") != nil {
		return 1
	}

	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}

	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		if params.NamedChild(i).Type() != "comment" {
			count++
		}
	}
	return count
}

func functionName(f *parser.File, fn *sitter.Node) string {
	if name := fn.ChildByFieldName("name"); name != nil {
		return f.Text(name)
	}

	// const handler = () => {}
	if p := fn.Parent(); p != nil {
		switch p.Type() {
		case "variable_declarator":
			if name := p.ChildByFieldName("name"); name != nil {
				return f.Text(name)
			}
		case "pair":
			if key := p.ChildByFieldName("key"); key != nil {
				return f.Text(key)
			}
		case "assignment_expression":
			if left := p.ChildByFieldName("left"); left != nil {
				return f.Text(left)
			}
		}
	}

	return "<anonymous>"
}
