// Package parser provides tree-sitter based parsing of preprocessed C++.
//
// The parser package wraps the tree-sitter C++ grammar and binds its syntax
// nodes to the Cursor interface the extractors walk. Cursors report text and
// positions of the original source through a Locator, so declarations that
// came out of the preprocessor still point at what the user wrote.
package parser

import (
	"context"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parser wraps tree-sitter for C++ parsing. A Parser is not safe for
// concurrent use; each translation unit gets its own.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the AST.
	Root *sitter.Node
	// Source is the text that was parsed.
	Source []byte
	// FilePath is the path to the source file (empty for in-memory parsing).
	FilePath string
}

// NewParser creates a C++ parser.
func NewParser() (*Parser, error) {
	p, err := newCppParser()
	if err != nil {
		return nil, err
	}
	return &Parser{parser: p}, nil
}

// Parse parses source code and returns the AST.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{
			Message: err.Error(),
		}
	}

	return &ParseResult{
		Tree:   tree,
		Root:   tree.RootNode(),
		Source: source,
	}, nil
}

// ParseNamed parses source that was read from, or preprocessed from, path.
func (p *Parser) ParseNamed(ctx context.Context, path string, source []byte) (*ParseResult, error) {
	result, err := p.Parse(ctx, source)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}

	result.FilePath = path
	return result, nil
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors returns true if the parse tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// WalkNodes traverses the AST depth-first, calling the visitor function
// for each node. If the visitor returns false, traversal stops.
func (r *ParseResult) WalkNodes(visitor func(*sitter.Node) bool) {
	if r.Root == nil {
		return
	}
	walkNode(r.Root, visitor)
}

// walkNode is a helper for depth-first AST traversal.
func walkNode(node *sitter.Node, visitor func(*sitter.Node) bool) bool {
	if !visitor(node) {
		return false
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if !walkNode(node.Child(int(i)), visitor) {
			return false
		}
	}
	return true
}

// FindNodes returns all nodes matching the given predicate.
func (r *ParseResult) FindNodes(predicate func(*sitter.Node) bool) []*sitter.Node {
	var nodes []*sitter.Node
	r.WalkNodes(func(node *sitter.Node) bool {
		if predicate(node) {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// SyntaxErrors returns the ERROR and missing nodes of the tree as
// ParseErrors, in source order. Positions are resolved through loc; a nil loc
// reports positions in the parsed text.
func (r *ParseResult) SyntaxErrors(loc Locator) []*ParseError {
	if r.Root == nil || !r.Root.HasError() {
		return nil
	}
	if loc == nil {
		loc = PlainLocator(r.FilePath, r.Source)
	}

	nodes := r.FindNodes(func(n *sitter.Node) bool {
		return n.Type() == "ERROR" || n.IsMissing()
	})
	out := make([]*ParseError, 0, len(nodes))
	for _, n := range nodes {
		pe := &ParseError{Message: "syntax error", File: r.FilePath}
		if n.IsMissing() {
			pe.Message = "missing " + n.Type()
		}
		if file, off, ok := loc.Locate(int(n.StartByte()), false); ok {
			pe.File = file
			pe.Line, pe.Column, _ = loc.LineCol(file, off)
		}
		out = append(out, pe)
	}
	return out
}

// IsSourceFile reports whether path has a C or C++ extension.
func IsSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range SupportedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// SupportedExtensions returns all file extensions supported for parsing.
func SupportedExtensions() []string {
	return []string{
		".cpp", ".cc", ".cxx", ".c++",
		".hpp", ".hh", ".hxx", ".h++", ".h",
		".inl", ".ipp",
	}
}
