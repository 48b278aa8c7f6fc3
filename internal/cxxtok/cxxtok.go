// Package cxxtok works on C++ declaration text at the token level: it splits
// text into tokens, joins tokens back with canonical spacing, and strips the
// declaration specifiers and attributes that are not part of a type.
package cxxtok

import (
	"strings"

	"github.com/cxdoc/cxdoc/internal/macro"
)

// Split returns the tokens of text. Comments and whitespace are dropped.
func Split(text string) []string {
	return Texts(Lex(text))
}

// Lex returns the tokens of text with their spacing.
func Lex(text string) []macro.Token {
	return macro.Tokenize(text)
}

// Texts returns the token texts.
func Texts(toks []macro.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

// Spell joins tokens as written, with a single space wherever whitespace
// separated two of them.
func Spell(toks []macro.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && t.Space {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Join concatenates tokens with canonical spacing: "const char*",
// "std::vector<int>&", "int[4]", "void(*)(int)", "std::map<int, int>".
func Join(toks []string) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks[i-1], t) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t)
	}
	return sb.String()
}

func needsSpace(prev, next string) bool {
	if prev == "," {
		return true
	}
	if !isWordStart(next[0]) {
		return false
	}
	if isWordStart(prev[len(prev)-1]) {
		return true
	}
	switch prev {
	case "*", "&", "&&", ">", ">>", ")", "]":
		return true
	}
	return false
}

func isWordStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') || b >= 0x80 || b == '"' || b == '\''
}

// Normalize re-spells text canonically.
func Normalize(text string) string {
	return Join(Split(text))
}

// specifiers are the decl-specifiers that never belong to a type.
var specifiers = map[string]bool{
	"virtual":       true,
	"static":        true,
	"inline":        true,
	"constexpr":     true,
	"consteval":     true,
	"constinit":     true,
	"explicit":      true,
	"friend":        true,
	"extern":        true,
	"mutable":       true,
	"register":      true,
	"thread_local":  true,
	"typedef":       true,
	"__inline":      true,
	"__inline__":    true,
	"__forceinline": true,
}

// IsSpecifier reports whether word is a declaration specifier.
func IsSpecifier(word string) bool {
	return specifiers[word]
}

// attributeCalls are keywords followed by a parenthesized argument that is
// not part of a type.
var attributeCalls = map[string]bool{
	"__attribute__": true,
	"__declspec":    true,
	"alignas":       true,
	"_Alignas":      true,
}

// StripSpecifiers removes declaration specifiers, the string of an extern
// linkage, the condition of explicit(bool) and attributes from toks.
func StripSpecifiers(toks []string) []string {
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t == "[" && i+1 < len(toks) && toks[i+1] == "[":
			i = skipAttribute(toks, i)
		case attributeCalls[t]:
			if i+1 < len(toks) && toks[i+1] == "(" {
				i = MatchParen(toks, i+1)
			}
		case t == "explicit":
			if i+1 < len(toks) && toks[i+1] == "(" {
				i = MatchParen(toks, i+1)
			}
		case t == "extern":
			if i+1 < len(toks) && strings.HasPrefix(toks[i+1], `"`) {
				i++
			}
		case specifiers[t]:
		default:
			out = append(out, t)
		}
	}
	return out
}

// skipAttribute returns the index of the last "]" of the [[...]] at i.
func skipAttribute(toks []string, i int) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j] {
		case "[":
			depth++
		case "]":
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(toks) - 1
}

// MatchParen returns the index of the bracket closing the one at i, or the
// last index when it is unbalanced. Parentheses, brackets and braces nest.
func MatchParen(toks []string, i int) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j] {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(toks) - 1
}

// TopLevel calls fn for each token of toks that is not nested in
// parentheses, brackets, braces or template angle brackets. Opening brackets
// of the outer level are reported, their closing counterparts are not. fn
// returns false to stop.
func TopLevel(toks []string, fn func(i int, tok string) bool) {
	parens, angles := 0, 0
	for i, t := range toks {
		atTop := parens == 0 && angles == 0
		switch t {
		case "(", "[", "{":
			parens++
		case ")", "]", "}":
			parens--
		case "<":
			if parens == 0 && i > 0 && isIdentToken(toks[i-1]) {
				angles++
			}
		case ">":
			if parens == 0 && angles > 0 {
				angles--
			}
		case ">>":
			if parens == 0 && angles > 0 {
				angles -= 2
				if angles < 0 {
					angles = 0
				}
			}
		}
		if atTop && !fn(i, t) {
			return
		}
	}
}

func isIdentToken(t string) bool {
	if t == "" {
		return false
	}
	b := t[0]
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}
