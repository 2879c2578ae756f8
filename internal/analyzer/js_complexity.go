package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// decisionKind classifies a node's contribution to cyclomatic complexity
type decisionKind int

const (
	decisionNone decisionKind = iota
	decisionIf
	decisionLoop
	decisionCase
	decisionCatch
	decisionLogical
	decisionTernary
)

// classifyDecision returns how n branches control flow, decisionNone if it does not.
// Logical operators (&&, ||, ??) and ternaries count like ESLint's complexity rule.
func classifyDecision(n *sitter.Node) decisionKind {
	switch n.Type() {
	case "if_statement":
		return decisionIf
	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		return decisionLoop
	case "switch_case":
		return decisionCase
	case "catch_clause":
		return decisionCatch
	case "ternary_expression":
		return decisionTernary
	case "binary_expression", "augmented_assignment_expression":
		if op := n.ChildByFieldName("operator"); op != nil {
			switch op.Type() {
			case "&&", "||", "??", "&&=", "||=", "??=":
				return decisionLogical
			}
		}
	}
	return decisionNone
}

// isNestedFunction returns true for nodes that start a new function scope.
// Their bodies are measured separately and do not add to the enclosing function.
func isNestedFunction(n *sitter.Node) bool {
	// the "function" keyword token shares its type with the expression node
	if !n.IsNamed() {
		return false
	}
	switch n.Type() {
	case "function_declaration", "function", "function_expression", "arrow_function",
		"method_definition", "generator_function_declaration", "generator_function":
		return true
	}
	return false
}

// isControlStructure reports statements that open a nesting level
func isControlStructure(n *sitter.Node) bool {
	switch n.Type() {
	case "if_statement":
		// "else if" continues the chain at the same level
		if p := n.Parent(); p != nil && p.Type() == "else_clause" {
			return false
		}
		return true
	case "switch_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "try_statement", "with_statement":
		return true
	}
	return false
}
