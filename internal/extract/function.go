package extract

import (
	"github.com/cxdoc/cxdoc/internal/cxxtok"
	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/macro"
	"github.com/cxdoc/cxdoc/internal/parser"
)

// ParseParameter converts a ParmDecl cursor into a Parameter. Unnamed
// parameters get an empty name.
func ParseParameter(cur parser.Cursor) (*entity.Parameter, error) {
	if err := expectKind("ParseParameter", cur, parser.ParmDecl); err != nil {
		return nil, err
	}

	return parseParameter(cur, true), nil
}

// parseParameter builds a Parameter. A parameter that is not written out
// in the source, as in a declaration produced by a macro, takes its type
// from the cursor and has no default value.
func parseParameter(cur parser.Cursor, written bool) *entity.Parameter {
	name := cur.Name()
	typ, def := entity.NewTypeRef(cur.Type(), ""), ""
	if written {
		typ, def = ParseVariableType(cur, name)
	}
	return &entity.Parameter{
		ParamName:  name,
		Type:       typ,
		Default:    def,
		DocComment: cur.Comment(),
		Position:   cur.Location().Position(),
	}
}

// ParseFunction converts a FunctionDecl cursor into a Function declared in
// scope.
func ParseFunction(scope string, cur parser.Cursor) (*entity.Function, error) {
	if err := expectKind("ParseFunction", cur, parser.FunctionDecl); err != nil {
		return nil, err
	}

	name := cur.Name()
	ret, info, member, written := parseFunctionInfo(cur, name)
	if !member.IsDefault() {
		return nil, invariant("ParseFunction", cur, "free function has member qualifiers %+v", member)
	}

	f := &entity.Function{
		Scope:        scope,
		FunctionName: name,
		DocComment:   cur.Comment(),
		Return:       ret,
		Info:         info,
		Position:     cur.Location().Position(),
	}
	if err := parseParameters(f, cur, written); err != nil {
		return nil, err
	}
	return f, nil
}

// ParseMemberFunction converts a CXXMethod cursor into a MemberFunction of
// the class scope.
func ParseMemberFunction(scope string, cur parser.Cursor) (*entity.MemberFunction, error) {
	if err := expectKind("ParseMemberFunction", cur, parser.CXXMethod); err != nil {
		return nil, err
	}

	name := cur.Name()
	ret, info, member, written := parseFunctionInfo(cur, name)

	m := &entity.MemberFunction{
		Function: entity.Function{
			Scope:        scope,
			FunctionName: name,
			DocComment:   cur.Comment(),
			Return:       ret,
			Info:         info,
			Position:     cur.Location().Position(),
		},
		Member: member,
	}
	if err := parseParameters(&m.Function, cur, written); err != nil {
		return nil, err
	}
	return m, nil
}

// parseParameters adds the ParmDecl children of cur in order. Template
// parameters and other children are skipped.
func parseParameters(f *entity.Function, cur parser.Cursor, written bool) error {
	for _, child := range cur.Children() {
		if child.Kind() != parser.ParmDecl {
			continue
		}
		f.AddParameter(parseParameter(child, written))
	}
	return nil
}

// parseFunctionInfo reads the return type and the qualifiers of a function
// from its spelling. written is false when the name does not appear in the
// spelling and the declaration could not be read.
func parseFunctionInfo(cur parser.Cursor, name string) (ret entity.TypeRef, info entity.FunctionInfo, member entity.MemberFunctionInfo, written bool) {
	info = entity.DefaultFunctionInfo()

	d, ok := splitDeclaration(cur.Spelling(), name)
	if !ok {
		return entity.NewTypeRef(cur.ResultType(), ""), info, member, false
	}

	virtual := false
	for _, t := range d.prefix {
		switch t.Text {
		case "constexpr", "consteval":
			info.Flags |= entity.Constexpr
		case "virtual":
			virtual = true
		}
	}
	if isVariadic(cxxtok.Texts(d.params)) {
		info.Flags |= entity.Variadic
	}

	q := parseSuffix(d.suffix)
	info.Definition = q.definition
	if q.noexcept != "" {
		info.Flags |= entity.ExplicitNoexcept
		info.Noexcept = q.noexcept
	}
	member.CV = q.cv
	member.Ref = q.ref
	switch {
	case q.definition == entity.DefinitionPure:
		member.Virtual = entity.VirtualPure
	case q.final:
		member.Virtual = entity.VirtualFinal
	case q.override:
		member.Virtual = entity.VirtualOverridden
	case virtual:
		member.Virtual = entity.VirtualNew
	}

	return entity.NewTypeRef(cur.ResultType(), functionTypeName(d)), info, member, true
}

// isVariadic reports whether a parameter list ends in a C-style ellipsis.
// A trailing pack expansion such as "Args..." does not count.
func isVariadic(params []string) bool {
	n := len(params)
	if n == 0 || params[n-1] != "..." {
		return false
	}
	return n == 1 || params[n-2] == ","
}

// qualifiers are the parts of a function declaration that follow the
// parameter list.
type qualifiers struct {
	cv              entity.CV
	ref             entity.RefQualifier
	noexcept        string
	override, final bool
	definition      entity.Definition
}

func parseSuffix(suffix []macro.Token) qualifiers {
	q := qualifiers{definition: entity.DefinitionNormal}
	texts := cxxtok.Texts(suffix)

	for i := 0; i < len(texts); i++ {
		switch texts[i] {
		case "const":
			q.cv |= entity.CVConst
		case "volatile":
			q.cv |= entity.CVVolatile
		case "&":
			q.ref = entity.RefLValue
		case "&&":
			q.ref = entity.RefRValue
		case "override":
			q.override = true
		case "final":
			q.final = true
		case "noexcept":
			q.noexcept = "true"
			if i+1 < len(texts) && texts[i+1] == "(" {
				end := cxxtok.MatchParen(texts, i+1)
				if end > i+1 {
					q.noexcept = cxxtok.Spell(suffix[i+2 : end])
				}
				i = end
			}
		case "throw":
			if i+1 < len(texts) && texts[i+1] == "(" {
				end := cxxtok.MatchParen(texts, i+1)
				q.noexcept = "false"
				if end == i+2 {
					q.noexcept = "true"
				}
				i = end
			}
		case "[":
			i = cxxtok.MatchParen(texts, i)
		case "__attribute__", "__declspec":
			if i+1 < len(texts) && texts[i+1] == "(" {
				i = cxxtok.MatchParen(texts, i+1)
			}
		case "->":
			i = skipTrailingReturn(texts, i+1) - 1
		case "=":
			if i+1 < len(texts) {
				switch texts[i+1] {
				case "0":
					q.definition = entity.DefinitionPure
				case "default":
					q.definition = entity.DefinitionDefaulted
				case "delete":
					q.definition = entity.DefinitionDeleted
				}
			}
			return q
		case "requires", "{", ":", "try":
			return q
		}
	}
	return q
}

// skipTrailingReturn returns the index after the trailing return type that
// starts at i.
func skipTrailingReturn(texts []string, i int) int {
	end := len(texts)
	cxxtok.TopLevel(texts[i:], func(j int, tok string) bool {
		if trailingStops[tok] {
			end = i + j
			return false
		}
		return true
	})
	return end
}
