package entity

import "strings"

// Type is the handle of a resolved type as reported by the source parser.
type Type struct {
	// Spelling is the canonical spelling of the type.
	Spelling string
	// Valid is false when the type could not be resolved.
	Valid bool
}

// InvalidType is the sentinel for a type that could not be resolved.
var InvalidType = Type{}

// NewType returns a valid type with the given spelling, or InvalidType if
// spelling is empty.
func NewType(spelling string) Type {
	spelling = strings.TrimSpace(spelling)
	if spelling == "" {
		return InvalidType
	}
	return Type{Spelling: spelling, Valid: true}
}

// TypeRef pairs a type handle with the text shown in documentation.
type TypeRef struct {
	Handle Type
	// Display is the type as the user wrote it in the declaration.
	Display string
}

// NewTypeRef builds a TypeRef. An empty display falls back to the spelling
// of the handle.
func NewTypeRef(handle Type, display string) TypeRef {
	display = strings.TrimSpace(display)
	if display == "" {
		display = handle.Spelling
	}
	return TypeRef{Handle: handle, Display: display}
}

// String returns the display text.
func (t TypeRef) String() string { return t.Display }

// Equal reports whether both the handle and display text match.
func (t TypeRef) Equal(other TypeRef) bool {
	return t.Handle == other.Handle && t.Display == other.Display
}

// FunctionFlags holds boolean attributes of a function.
type FunctionFlags uint8

const (
	// Constexpr marks a constexpr function.
	Constexpr FunctionFlags = 1 << iota
	// Variadic marks a C-style variadic function (trailing `...`).
	Variadic
	// ExplicitNoexcept marks a function with an explicit exception specification.
	ExplicitNoexcept
)

// Has reports whether all flags in f2 are set.
func (f FunctionFlags) Has(f2 FunctionFlags) bool { return f&f2 == f2 }

// Definition describes how a function body is provided.
type Definition string

const (
	// DefinitionNormal is a plain declaration or definition.
	DefinitionNormal Definition = "normal"
	// DefinitionDeleted is `= delete`.
	DefinitionDeleted Definition = "deleted"
	// DefinitionDefaulted is `= default`.
	DefinitionDefaulted Definition = "defaulted"
	// DefinitionPure is `= 0`, only valid on virtual member functions.
	DefinitionPure Definition = "pure"
)

// FunctionInfo is the attribute bundle shared by functions and member functions.
type FunctionInfo struct {
	Flags FunctionFlags
	// Noexcept is "false" without exception specification, "true" for a bare
	// noexcept or throw(), or the expression of noexcept(expr).
	Noexcept   string
	Definition Definition
}

// DefaultFunctionInfo returns the info of a plain function.
func DefaultFunctionInfo() FunctionInfo {
	return FunctionInfo{Noexcept: "false", Definition: DefinitionNormal}
}

// Virtual describes the virtual-ness of a member function.
type Virtual string

const (
	// VirtualNone is a non-virtual function.
	VirtualNone Virtual = ""
	// VirtualPure is a pure virtual function.
	VirtualPure Virtual = "pure"
	// VirtualNew introduces a new virtual function.
	VirtualNew Virtual = "virtual"
	// VirtualOverridden overrides a base function.
	VirtualOverridden Virtual = "override"
	// VirtualFinal overrides a base function and forbids further overriding.
	VirtualFinal Virtual = "final"
)

// CV is a set of const/volatile qualifiers.
type CV uint8

const (
	// CVConst is the const qualifier.
	CVConst CV = 1 << iota
	// CVVolatile is the volatile qualifier.
	CVVolatile
)

// IsConst reports whether const is set.
func (c CV) IsConst() bool { return c&CVConst != 0 }

// IsVolatile reports whether volatile is set.
func (c CV) IsVolatile() bool { return c&CVVolatile != 0 }

// String returns the qualifiers as written, e.g. "const volatile".
func (c CV) String() string {
	var parts []string
	if c.IsConst() {
		parts = append(parts, "const")
	}
	if c.IsVolatile() {
		parts = append(parts, "volatile")
	}
	return strings.Join(parts, " ")
}

// RefQualifier is the ref-qualifier of a member function.
type RefQualifier string

const (
	// RefNone means no ref-qualifier.
	RefNone RefQualifier = ""
	// RefLValue is `&`.
	RefLValue RefQualifier = "&"
	// RefRValue is `&&`.
	RefRValue RefQualifier = "&&"
)

// MemberFunctionInfo is the qualifier bundle of a member function. The three
// fields are independent of each other.
type MemberFunctionInfo struct {
	Virtual Virtual
	CV      CV
	Ref     RefQualifier
}

// IsDefault reports whether no qualifier is set.
func (m MemberFunctionInfo) IsDefault() bool {
	return m.Virtual == VirtualNone && m.CV == 0 && m.Ref == RefNone
}

// IsVirtual reports whether the function participates in virtual dispatch.
func (m MemberFunctionInfo) IsVirtual() bool { return m.Virtual != VirtualNone }
