package extract

import (
	"github.com/cxdoc/cxdoc/internal/cxxtok"
	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/macro"
	"github.com/cxdoc/cxdoc/internal/parser"
)

// ParseVariableType builds the type of a variable-like declaration such as a
// parameter. The display text is the spelling with the declared name and the
// default value removed. The default value is returned as written. When the
// name does not appear in the spelling the display text falls back to the
// resolved type and no default is returned.
func ParseVariableType(cur parser.Cursor, name string) (entity.TypeRef, string) {
	toks := cxxtok.Lex(cur.Spelling())

	var def string
	if eq := topLevelIndex(toks, "="); eq >= 0 {
		def = cxxtok.Spell(toks[eq+1:])
		toks = toks[:eq]
	}

	texts := cxxtok.Texts(toks)
	if name != "" {
		found := false
		for i := len(texts) - 1; i >= 0; i-- {
			if texts[i] == name {
				texts = append(texts[:i:i], texts[i+1:]...)
				found = true
				break
			}
		}
		// The name is not written out: the spelling is some macro
		// invocation rather than the declaration.
		if !found {
			return entity.NewTypeRef(cur.Type(), ""), ""
		}
	}

	return entity.NewTypeRef(cur.Type(), cxxtok.Join(texts)), def
}

func topLevelIndex(toks []macro.Token, text string) int {
	found := -1
	cxxtok.TopLevel(cxxtok.Texts(toks), func(i int, tok string) bool {
		if tok == text {
			found = i
			return false
		}
		return true
	})
	return found
}

// declaration is the spelling of a function split around its parameter list.
type declaration struct {
	// prefix holds the tokens before the name.
	prefix []macro.Token
	// params holds the tokens between the parentheses of the parameter list.
	params []macro.Token
	// suffix holds the tokens after the parameter list.
	suffix []macro.Token
}

// splitDeclaration finds the declared name in the spelling of a function.
// It fails when the name does not appear as written, as for declarations
// produced by a macro.
func splitDeclaration(spelling, name string) (declaration, bool) {
	toks := cxxtok.Lex(spelling)
	texts := cxxtok.Texts(toks)
	nameToks := cxxtok.Split(name)
	if len(nameToks) == 0 {
		return declaration{}, false
	}

	at := -1
	cxxtok.TopLevel(texts, func(i int, tok string) bool {
		n := i + len(nameToks)
		if n < len(texts) && texts[n] == "(" && equal(texts[i:n], nameToks) {
			at = i
			return false
		}
		return true
	})
	if at < 0 {
		return declaration{}, false
	}

	open := at + len(nameToks)
	end := cxxtok.MatchParen(texts, open)
	return declaration{
		prefix: toks[:at],
		params: toks[open+1 : end],
		suffix: toks[end+1:],
	}, true
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// trailingStops end a trailing return type.
var trailingStops = map[string]bool{
	"override": true, "final": true, "=": true, "requires": true, "{": true, "try": true,
}

// functionTypeName is the return type of a function as written: the prefix
// without specifiers and attributes, or the trailing return type.
func functionTypeName(d declaration) string {
	suffix := cxxtok.Texts(d.suffix)
	arrow := -1
	cxxtok.TopLevel(suffix, func(i int, tok string) bool {
		if tok == "->" {
			arrow = i
			return false
		}
		return true
	})
	if arrow >= 0 {
		rest := suffix[arrow+1:]
		end := len(rest)
		cxxtok.TopLevel(rest, func(i int, tok string) bool {
			if trailingStops[tok] {
				end = i
				return false
			}
			return true
		})
		return cxxtok.Join(rest[:end])
	}
	return cxxtok.Join(cxxtok.StripSpecifiers(cxxtok.Texts(d.prefix)))
}
