package parser

import (
	"sort"

	"github.com/cxdoc/cxdoc/internal/entity"
)

// CursorKind classifies a declaration cursor.
type CursorKind int

const (
	Unexposed CursorKind = iota
	TranslationUnit
	Namespace
	LinkageSpec
	ClassDecl
	StructDecl
	FunctionDecl
	CXXMethod
	Constructor
	Destructor
	ParmDecl
	TemplateTypeParameter
	NonTypeTemplateParameter
	TemplateTemplateParameter
)

var kindNames = map[CursorKind]string{
	Unexposed:                 "Unexposed",
	TranslationUnit:           "TranslationUnit",
	Namespace:                 "Namespace",
	LinkageSpec:               "LinkageSpec",
	ClassDecl:                 "ClassDecl",
	StructDecl:                "StructDecl",
	FunctionDecl:              "FunctionDecl",
	CXXMethod:                 "CXXMethod",
	Constructor:               "Constructor",
	Destructor:                "Destructor",
	ParmDecl:                  "ParmDecl",
	TemplateTypeParameter:     "TemplateTypeParameter",
	NonTypeTemplateParameter:  "NonTypeTemplateParameter",
	TemplateTemplateParameter: "TemplateTemplateParameter",
}

// String returns the kind name.
func (k CursorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Location is a position in an original source file.
type Location struct {
	File   string
	Line   uint32
	Column uint32
	Offset int
}

// Position converts the location to an entity position.
func (l Location) Position() entity.Position {
	return entity.Position{Line: l.Line, Column: l.Column, Offset: l.Offset}
}

// Cursor is one declaration node of a parsed translation unit.
type Cursor interface {
	Kind() CursorKind
	// Name is the declared name. Qualified names keep their qualification,
	// e.g. "Widget::draw" for an out-of-line member definition.
	Name() string
	// Spelling is the original source text of the declaration without its
	// body or template header. Macro invocations appear unexpanded.
	Spelling() string
	// Type is the type of the declaration as seen by the parser.
	Type() entity.Type
	// ResultType is the return type of a function, InvalidType otherwise.
	ResultType() entity.Type
	// Location is the start of the declaration in the original source.
	Location() Location
	// Comment is the documentation comment immediately before the
	// declaration, empty if there is none.
	Comment() string
	Children() []Cursor
}

// Locator maps offsets of the parsed text back to original files.
// *macro.SourceMap implements it.
type Locator interface {
	// Locate maps a parsed offset to a file and offset. Pass end=true for
	// the exclusive end of a range.
	Locate(off int, end bool) (file string, srcOff int, ok bool)
	// Text returns original text of file.
	Text(file string, start, end int) (string, bool)
	// LineCol returns the 1-based line and column of an offset in file.
	LineCol(file string, off int) (line, col uint32, ok bool)
}

// PlainLocator returns the Locator of text that was parsed as is.
func PlainLocator(path string, source []byte) Locator {
	lines := []int{0}
	for i, b := range source {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &plainLocator{path: path, text: source, lines: lines}
}

type plainLocator struct {
	path  string
	text  []byte
	lines []int
}

func (l *plainLocator) Locate(off int, end bool) (string, int, bool) {
	if off < 0 || off > len(l.text) {
		return "", 0, false
	}
	return l.path, off, true
}

func (l *plainLocator) Text(file string, start, end int) (string, bool) {
	if file != l.path || start < 0 || end > len(l.text) || start > end {
		return "", false
	}
	return string(l.text[start:end]), true
}

func (l *plainLocator) LineCol(file string, off int) (uint32, uint32, bool) {
	if file != l.path {
		return 0, 0, false
	}
	i := sort.Search(len(l.lines), func(i int) bool { return l.lines[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return uint32(i + 1), uint32(off-l.lines[i]) + 1, true
}
