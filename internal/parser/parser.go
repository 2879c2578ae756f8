// Package parser wraps tree-sitter for JavaScript and TypeScript sources.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language selects the grammar used for a file
type Language int

const (
	JavaScript Language = iota
	TypeScript
	TSX
)

// String returns the language name
func (l Language) String() string {
	switch l {
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	default:
		return "javascript"
	}
}

// LanguageForPath picks the grammar from the file extension.
// JSX is handled by the JavaScript grammar.
func LanguageForPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return TypeScript
	case ".tsx":
		return TSX
	default:
		return JavaScript
	}
}

// SupportedExtensions lists the extensions jsgate analyzes
var SupportedExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}

// IsSupported reports whether path has a JavaScript or TypeScript extension
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Parser wraps a tree-sitter parser for one language. It is not safe for concurrent use.
type Parser struct {
	parser   *sitter.Parser
	language Language
}

// NewParser creates a parser for the given language
func NewParser(language Language) *Parser {
	p := sitter.NewParser()
	switch language {
	case TypeScript:
		p.SetLanguage(typescript.GetLanguage())
	case TSX:
		p.SetLanguage(tsx.GetLanguage())
	default:
		p.SetLanguage(javascript.GetLanguage())
	}
	return &Parser{parser: p, language: language}
}

// Language returns the grammar this parser was built for
func (p *Parser) Language() Language {
	return p.language
}

// Parse builds a syntax tree. The caller must Close the returned File.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*File, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s: no tree produced", path)
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, fmt.Errorf("no root node in parse tree for %s", path)
	}

	return &File{Path: path, Source: source, Language: p.language, tree: tree, Root: root}, nil
}

// Close frees the underlying tree-sitter parser
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseForPath parses source with the grammar matching path's extension
func ParseForPath(ctx context.Context, path string, source []byte) (*File, error) {
	p := NewParser(LanguageForPath(path))
	defer p.Close()
	return p.Parse(ctx, path, source)
}

// File is a parsed source file
type File struct {
	Path     string
	Source   []byte
	Language Language
	Root     *sitter.Node

	tree *sitter.Tree
}

// Close releases the syntax tree
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Text returns the source text covered by n
func (f *File) Text(n *sitter.Node) string {
	return n.Content(f.Source)
}

// Position returns the 1-based line and column where n starts
func Position(n *sitter.Node) (line, column int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column) + 1
}

// Walk visits n and its descendants depth-first. depth counts from 0 at n.
// Returning false from fn skips the children of the visited node.
func Walk(n *sitter.Node, fn func(node *sitter.Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *sitter.Node, depth int, fn func(*sitter.Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), depth+1, fn)
	}
}

// SyntaxErrors returns ERROR and MISSING nodes in source order.
// Children of an ERROR node are not reported separately.
func SyntaxErrors(root *sitter.Node) []*sitter.Node {
	if root == nil || !root.HasError() {
		return nil
	}

	var errs []*sitter.Node
	Walk(root, func(n *sitter.Node, _ int) bool {
		if n.Type() == "ERROR" || n.IsMissing() {
			errs = append(errs, n)
			return false
		}
		return n.HasError()
	})
	return errs
}
