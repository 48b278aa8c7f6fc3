package macro

import (
	"sort"
	"strings"
)

// TokenKind classifies a preprocessing token.
type TokenKind uint8

const (
	// EOF marks the end of input.
	EOF TokenKind = iota
	// Ident is an identifier or keyword.
	Ident
	// Number is a pp-number.
	Number
	// Char is a character literal.
	Char
	// String is a string literal, including raw strings.
	String
	// Punct is a punctuator.
	Punct
	// Space is horizontal whitespace, including line splices.
	Space
	// Newline is a single '\n'.
	Newline
	// Comment is a // or /* */ comment.
	Comment
	// Other is any character that forms no other token.
	Other
)

// source is one file read by the engine.
type source struct {
	path     string
	text     []byte
	lines    []int // offset of the start of each line
	dirIndex int   // search path index the file was found in, -1 for none
}

func newSource(path string, text []byte, dirIndex int) *source {
	lines := []int{0}
	for i, b := range text {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &source{path: path, text: text, lines: lines, dirIndex: dirIndex}
}

// lineCol returns the 1-based line and column of offset.
func (s *source) lineCol(off int) (uint32, uint32) {
	i := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return uint32(i + 1), uint32(off-s.lines[i]) + 1
}

// span is a range of bytes in a source file.
type span struct {
	src        *source
	start, end int
}

// token is a preprocessing token. Tokens lexed from a file carry their
// position; tokens produced by expansion carry the span of the outermost
// invocation instead.
type token struct {
	kind TokenKind
	text string
	src  *source
	off  int
	end  int
	// space is set when whitespace preceded the token. It is only used for
	// tokens that travel without their whitespace tokens (macro bodies,
	// arguments, expansion results).
	space bool
	hide  hideset
	site  *span
}

func (t token) is(kind TokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) isPunct(text string) bool { return t.is(Punct, text) }

// blank reports whether the token is whitespace or a comment.
func (t token) blank() bool {
	return t.kind == Space || t.kind == Newline || t.kind == Comment
}

// origin returns the source range the token stands for.
func (t token) origin() span {
	if t.site != nil {
		return *t.site
	}
	return span{src: t.src, start: t.off, end: t.end}
}

// expanded reports whether the token was produced by macro expansion.
func (t token) expanded() bool { return t.site != nil }

// hideset is the set of macro names a token may not be expanded by again.
type hideset map[string]struct{}

func (h hideset) has(name string) bool {
	_, ok := h[name]
	return ok
}

func (h hideset) with(names ...string) hideset {
	out := make(hideset, len(h)+len(names))
	for k := range h {
		out[k] = struct{}{}
	}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func (h hideset) union(o hideset) hideset {
	if len(o) == 0 {
		return h
	}
	out := h.with()
	for k := range o {
		out[k] = struct{}{}
	}
	return out
}

func (h hideset) intersect(o hideset) hideset {
	out := hideset{}
	for k := range h {
		if o.has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// spell joins tokens the way the preprocessor prints them: a single space
// wherever whitespace separated two tokens.
func spell(toks []token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && t.space {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}
