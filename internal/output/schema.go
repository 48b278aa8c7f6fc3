package output

import (
	"strings"

	"github.com/cxdoc/cxdoc/internal/entity"
)

// FileOutput is the entity log of one translation unit.
type FileOutput struct {
	// File is the path of the main file.
	File string `yaml:"file" json:"file"`

	// Count is the number of entities.
	Count int `yaml:"count" json:"count"`

	// Entities are in source order.
	Entities []*EntityOutput `yaml:"entities" json:"entities"`
}

// RunOutput is the result of documenting several units.
type RunOutput struct {
	Files  []*FileOutput `yaml:"files" json:"files"`
	Failed []*FailedUnit `yaml:"failed,omitempty" json:"failed,omitempty"`
}

// FailedUnit is a unit that produced no entity log.
type FailedUnit struct {
	File  string `yaml:"file" json:"file"`
	Error string `yaml:"error" json:"error"`
}

// EntityOutput is one entity. Fields that do not apply to the kind of the
// entity are omitted.
type EntityOutput struct {
	// Kind is macro, include, function or member_function.
	Kind string `yaml:"kind" json:"kind"`

	Name string `yaml:"name" json:"name"`

	// Scope is the enclosing namespace or class, e.g. "ns::Widget".
	Scope string `yaml:"scope,omitempty" json:"scope,omitempty"`

	// Location is line:column in the main file.
	Location string `yaml:"location" json:"location"`

	// Offset is the byte offset in the main file (dense only).
	Offset *int `yaml:"offset,omitempty" json:"offset,omitempty"`

	// Signature is the declaration rebuilt from the extracted parts.
	// Example: "virtual void draw() const = 0"
	Signature string `yaml:"signature,omitempty" json:"signature,omitempty"`

	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`

	// Macro fields
	Params      string `yaml:"params,omitempty" json:"params,omitempty"`
	Replacement string `yaml:"replacement,omitempty" json:"replacement,omitempty"`

	// Include fields
	Include string `yaml:"include,omitempty" json:"include,omitempty"`

	// Function fields
	Return     *TypeOutput        `yaml:"return,omitempty" json:"return,omitempty"`
	Parameters []*ParameterOutput `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Constexpr  bool               `yaml:"constexpr,omitempty" json:"constexpr,omitempty"`
	Variadic   bool               `yaml:"variadic,omitempty" json:"variadic,omitempty"`

	// Noexcept is set only for an explicit exception specification.
	Noexcept string `yaml:"noexcept,omitempty" json:"noexcept,omitempty"`

	// Definition is deleted, defaulted or pure; omitted for normal.
	Definition string `yaml:"definition,omitempty" json:"definition,omitempty"`

	// Member function fields
	Virtual string `yaml:"virtual,omitempty" json:"virtual,omitempty"`
	CV      string `yaml:"cv,omitempty" json:"cv,omitempty"`
	Ref     string `yaml:"ref,omitempty" json:"ref,omitempty"`
}

// TypeOutput is a type as written, with its canonical spelling in dense mode.
type TypeOutput struct {
	Display string `yaml:"display" json:"display"`

	// Canonical is the spelling resolved by the parser. "<invalid>" marks a
	// type that could not be resolved.
	Canonical string `yaml:"canonical,omitempty" json:"canonical,omitempty"`
}

// ParameterOutput is one function parameter.
type ParameterOutput struct {
	Name    string      `yaml:"name,omitempty" json:"name,omitempty"`
	Type    *TypeOutput `yaml:"type" json:"type"`
	Default string      `yaml:"default,omitempty" json:"default,omitempty"`
	Comment string      `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// NewFileOutput converts the entity log of file.
func NewFileOutput(file *entity.File, density Density) *FileOutput {
	out := &FileOutput{File: file.Path, Count: file.Len()}
	out.Entities = make([]*EntityOutput, 0, file.Len())
	for _, e := range file.Entities() {
		out.Entities = append(out.Entities, NewEntityOutput(e, density))
	}
	return out
}

// NewEntityOutput converts one entity.
func NewEntityOutput(e entity.Entity, density Density) *EntityOutput {
	out := &EntityOutput{
		Kind:     string(e.Kind()),
		Name:     e.Name(),
		Location: e.Pos().String(),
	}
	if density.IncludesOffsets() {
		off := e.Pos().Offset
		out.Offset = &off
	}
	if density.IncludesDetails() {
		out.Comment = e.Comment()
	}

	switch v := e.(type) {
	case *entity.MacroDefinition:
		if density.IncludesDetails() {
			out.Params = v.Params
			out.Replacement = v.Replacement
		}
	case *entity.InclusionDirective:
		out.Include = string(v.IncludeKind)
	case *entity.Function:
		fillFunction(out, v, nil, density)
	case *entity.MemberFunction:
		fillFunction(out, &v.Function, &v.Member, density)
	}
	return out
}

func fillFunction(out *EntityOutput, f *entity.Function, m *entity.MemberFunctionInfo, density Density) {
	out.Scope = f.Scope
	out.Signature = Signature(f, m)
	if !density.IncludesDetails() {
		return
	}

	out.Return = typeOutput(f.Return, density)
	for _, p := range f.Parameters {
		out.Parameters = append(out.Parameters, &ParameterOutput{
			Name:    p.ParamName,
			Type:    typeOutput(p.Type, density),
			Default: p.Default,
			Comment: p.DocComment,
		})
	}
	out.Constexpr = f.Info.Flags.Has(entity.Constexpr)
	out.Variadic = f.Info.Flags.Has(entity.Variadic)
	if f.Info.Flags.Has(entity.ExplicitNoexcept) {
		out.Noexcept = f.Info.Noexcept
	}
	if f.Info.Definition != entity.DefinitionNormal {
		out.Definition = string(f.Info.Definition)
	}
	if m != nil {
		out.Virtual = string(m.Virtual)
		out.CV = m.CV.String()
		out.Ref = string(m.Ref)
	}
}

func typeOutput(t entity.TypeRef, density Density) *TypeOutput {
	out := &TypeOutput{Display: t.Display}
	if density.IncludesTypes() {
		out.Canonical = t.Handle.Spelling
		if !t.Handle.Valid {
			out.Canonical = "<invalid>"
		}
	}
	return out
}

// Signature rebuilds the declaration of f. m is nil for free functions.
func Signature(f *entity.Function, m *entity.MemberFunctionInfo) string {
	var sb strings.Builder
	if m != nil && (m.Virtual == entity.VirtualNew || m.Virtual == entity.VirtualPure) {
		sb.WriteString("virtual ")
	}
	if f.Info.Flags.Has(entity.Constexpr) {
		sb.WriteString("constexpr ")
	}
	if ret := f.Return.Display; ret != "" {
		sb.WriteString(ret)
		sb.WriteByte(' ')
	}
	sb.WriteString(f.FunctionName)

	params := make([]string, 0, len(f.Parameters)+1)
	for _, p := range f.Parameters {
		params = append(params, parameter(p))
	}
	if f.Info.Flags.Has(entity.Variadic) {
		params = append(params, "...")
	}
	sb.WriteByte('(')
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteByte(')')

	if m != nil {
		if cv := m.CV.String(); cv != "" {
			sb.WriteString(" " + cv)
		}
		if m.Ref != entity.RefNone {
			sb.WriteString(" " + string(m.Ref))
		}
	}
	if f.Info.Flags.Has(entity.ExplicitNoexcept) {
		switch f.Info.Noexcept {
		case "true":
			sb.WriteString(" noexcept")
		default:
			sb.WriteString(" noexcept(" + f.Info.Noexcept + ")")
		}
	}
	if m != nil {
		switch m.Virtual {
		case entity.VirtualOverridden:
			sb.WriteString(" override")
		case entity.VirtualFinal:
			sb.WriteString(" final")
		}
	}
	switch f.Info.Definition {
	case entity.DefinitionPure:
		sb.WriteString(" = 0")
	case entity.DefinitionDefaulted:
		sb.WriteString(" = default")
	case entity.DefinitionDeleted:
		sb.WriteString(" = delete")
	}
	return sb.String()
}

func parameter(p *entity.Parameter) string {
	s := p.Type.Display
	if p.ParamName != "" {
		s += " " + p.ParamName
	}
	if p.HasDefault() {
		s += " = " + p.Default
	}
	return s
}
