package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// isJump reports whether control never falls through stmt to the next sibling
func isJump(stmt *sitter.Node) bool {
	switch stmt.Type() {
	case "return_statement", "throw_statement", "break_statement", "continue_statement":
		return true
	}
	return false
}

// isHoisted reports declarations that are reachable wherever they appear in a block
func isHoisted(stmt *sitter.Node) bool {
	switch stmt.Type() {
	case "function_declaration", "generator_function_declaration",
		"empty_statement", "comment",
		"interface_declaration", "type_alias_declaration", "ambient_declaration":
		return true
	case "variable_declaration":
		// "var x;" without an initializer only hoists the binding
		for i := 0; i < int(stmt.NamedChildCount()); i++ {
			if d := stmt.NamedChild(i); d.Type() == "variable_declarator" && d.ChildByFieldName("value") != nil {
				return false
			}
		}
		return true
	}
	return false
}

// isStatementList reports nodes whose named children run in sequence
func isStatementList(n *sitter.Node) bool {
	switch n.Type() {
	case "program", "statement_block", "switch_case", "switch_default":
		return true
	}
	return false
}
