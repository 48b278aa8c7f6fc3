// Package entity defines the documentation entity model extracted from a
// C++ translation unit.
//
// A File holds the entities of one unit in source order. The preprocessor
// records directive entities (macro definitions, inclusion directives) and
// the extractor records declaration entities (functions, member functions)
// into the same File, so both passes share the byte offset in the main file
// as their ordering key.
package entity

import "fmt"

// Kind identifies the variant of an entity.
type Kind string

const (
	// MacroDefinitionKind is a #define in the main file.
	MacroDefinitionKind Kind = "macro"
	// InclusionDirectiveKind is a doc-visible #include.
	InclusionDirectiveKind Kind = "include"
	// FunctionKind is a free function declaration.
	FunctionKind Kind = "function"
	// MemberFunctionKind is a member function declaration.
	MemberFunctionKind Kind = "member_function"
	// ParameterKind is a function parameter.
	ParameterKind Kind = "parameter"
)

// Position is the location of an entity in the main file.
type Position struct {
	// Line is 1-based.
	Line uint32
	// Column is 1-based.
	Column uint32
	// Offset is the 0-based byte offset and the ordering key of a File.
	Offset int
}

// String returns line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Entity is one recorded declaration or directive.
type Entity interface {
	Kind() Kind
	Name() string
	// Comment is the attached documentation comment, empty if none.
	Comment() string
	Pos() Position
}

// IncludeKind distinguishes <system> from "local" includes.
type IncludeKind string

const (
	// SystemInclude is an include written with angle brackets.
	SystemInclude IncludeKind = "system"
	// LocalInclude is an include written with quotes.
	LocalInclude IncludeKind = "local"
)

// MacroDefinition is a macro defined in the main file.
type MacroDefinition struct {
	MacroName string
	// Params is the parameter list including parentheses, e.g. "(a, b)".
	// It is empty for object-like macros.
	Params string
	// Replacement is the replacement list as written, whitespace collapsed.
	Replacement string
	// Line is the 1-based line of the macro name.
	Line     uint32
	Position Position
}

// Kind implements Entity.
func (m *MacroDefinition) Kind() Kind { return MacroDefinitionKind }

// Name implements Entity.
func (m *MacroDefinition) Name() string { return m.MacroName }

// Comment implements Entity. Macros carry no comment.
func (m *MacroDefinition) Comment() string { return "" }

// Pos implements Entity.
func (m *MacroDefinition) Pos() Position { return m.Position }

// FunctionLike reports whether the macro takes parameters.
func (m *MacroDefinition) FunctionLike() bool { return m.Params != "" }

// InclusionDirective is an include of a documentation-relevant header that
// was recorded instead of expanded.
type InclusionDirective struct {
	Path        string
	IncludeKind IncludeKind
	Position    Position
}

// Kind implements Entity.
func (i *InclusionDirective) Kind() Kind { return InclusionDirectiveKind }

// Name implements Entity. The name of an inclusion directive is its path.
func (i *InclusionDirective) Name() string { return i.Path }

// Comment implements Entity.
func (i *InclusionDirective) Comment() string { return "" }

// Pos implements Entity.
func (i *InclusionDirective) Pos() Position { return i.Position }

// Parameter is one parameter of a function.
type Parameter struct {
	// ParamName may be empty for unnamed parameters.
	ParamName string
	Type      TypeRef
	// Default is the raw source text of the initializer, empty if none.
	Default    string
	DocComment string
	Position   Position
}

// Kind implements Entity.
func (p *Parameter) Kind() Kind { return ParameterKind }

// Name implements Entity.
func (p *Parameter) Name() string { return p.ParamName }

// Comment implements Entity.
func (p *Parameter) Comment() string { return p.DocComment }

// Pos implements Entity.
func (p *Parameter) Pos() Position { return p.Position }

// HasDefault reports whether the parameter has a default value.
func (p *Parameter) HasDefault() bool { return p.Default != "" }

// Function is a free function declaration.
type Function struct {
	// Scope is the enclosing namespace, e.g. "ns::detail". Empty at global scope.
	Scope        string
	FunctionName string
	DocComment   string
	Return       TypeRef
	Parameters   []*Parameter
	Info         FunctionInfo
	Position     Position
}

// Kind implements Entity.
func (f *Function) Kind() Kind { return FunctionKind }

// Name implements Entity.
func (f *Function) Name() string { return f.FunctionName }

// Comment implements Entity.
func (f *Function) Comment() string { return f.DocComment }

// Pos implements Entity.
func (f *Function) Pos() Position { return f.Position }

// QualifiedName returns Scope::Name.
func (f *Function) QualifiedName() string {
	if f.Scope == "" {
		return f.FunctionName
	}
	return f.Scope + "::" + f.FunctionName
}

// AddParameter appends p to the parameter list.
func (f *Function) AddParameter(p *Parameter) {
	f.Parameters = append(f.Parameters, p)
}

// MemberFunction is a member function declared in a class body.
type MemberFunction struct {
	Function
	Member MemberFunctionInfo
}

// Kind implements Entity.
func (m *MemberFunction) Kind() Kind { return MemberFunctionKind }
