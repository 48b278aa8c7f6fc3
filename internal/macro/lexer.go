package macro

import "strings"

// punctuators sorted so that longer spellings are tried first.
var punctuators = []string{
	"...", "<<=", ">>=", "->*", "<=>",
	"##", "::", "->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ".*",
	"#", "{", "}", "[", "]", "(", ")", ";", ":", "?", ".", "+", "-",
	"*", "/", "%", "^", "&", "|", "~", "!", "=", "<", ">", ",",
}

var rawPrefixes = []string{"u8R", "uR", "UR", "LR", "R"}
var stringPrefixes = []string{"u8", "u", "U", "L"}

// lex splits a whole file into preprocessing tokens. Every byte of the input
// belongs to exactly one token, so concatenating the token texts gives back
// the input.
func lex(src *source) []token {
	l := lexer{src: src, text: string(src.text)}
	var toks []token
	for {
		t, ok := l.next()
		if !ok {
			return toks
		}
		toks = append(toks, t)
	}
}

// lexString tokenizes text that has no file of its own, such as -D values
// or the result of a ## paste. Whitespace is folded into the space flag.
func lexString(text string) []token {
	l := lexer{text: text}
	var toks []token
	space := false
	for {
		t, ok := l.next()
		if !ok {
			return toks
		}
		if t.blank() {
			space = true
			continue
		}
		t.space = space
		t.src = nil
		space = false
		toks = append(toks, t)
	}
}

type lexer struct {
	src  *source
	text string
	pos  int
}

func (l *lexer) tok(kind TokenKind, start int) token {
	return token{kind: kind, text: l.text[start:l.pos], src: l.src, off: start, end: l.pos}
}

func (l *lexer) peek(i int) byte {
	if l.pos+i < len(l.text) {
		return l.text[l.pos+i]
	}
	return 0
}

func (l *lexer) next() (token, bool) {
	if l.pos >= len(l.text) {
		return token{}, false
	}
	start := l.pos
	c := l.text[l.pos]

	switch {
	case c == '\n':
		l.pos++
		return l.tok(Newline, start), true

	case isHSpace(c) || (c == '\\' && l.splice(l.pos) > 0):
		for l.pos < len(l.text) {
			if isHSpace(l.text[l.pos]) {
				l.pos++
				continue
			}
			if n := l.splice(l.pos); n > 0 {
				l.pos += n
				continue
			}
			break
		}
		return l.tok(Space, start), true

	case c == '/' && l.peek(1) == '/':
		for l.pos < len(l.text) && l.text[l.pos] != '\n' {
			if n := l.splice(l.pos); n > 0 {
				l.pos += n
				continue
			}
			l.pos++
		}
		return l.tok(Comment, start), true

	case c == '/' && l.peek(1) == '*':
		end := strings.Index(l.text[l.pos+2:], "*/")
		if end < 0 {
			l.pos = len(l.text)
		} else {
			l.pos += 2 + end + 2
		}
		return l.tok(Comment, start), true

	case isIdentStart(c):
		for l.pos < len(l.text) && isIdentPart(l.text[l.pos]) {
			l.pos++
		}
		word := l.text[start:l.pos]
		if l.pos < len(l.text) && l.text[l.pos] == '"' {
			for _, p := range rawPrefixes {
				if word == p {
					l.rawString()
					return l.tok(String, start), true
				}
			}
		}
		if l.pos < len(l.text) && (l.text[l.pos] == '"' || l.text[l.pos] == '\'') {
			for _, p := range stringPrefixes {
				if word == p {
					q := l.text[l.pos]
					l.quoted(q)
					if q == '"' {
						return l.tok(String, start), true
					}
					return l.tok(Char, start), true
				}
			}
		}
		return l.tok(Ident, start), true

	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.pos++
		for l.pos < len(l.text) {
			b := l.text[l.pos]
			if (b == '+' || b == '-') && strings.ContainsRune("eEpP", rune(l.text[l.pos-1])) {
				l.pos++
				continue
			}
			if b == '\'' && isIdentPart(l.peek(1)) {
				l.pos += 2
				continue
			}
			if isIdentPart(b) || b == '.' {
				l.pos++
				continue
			}
			break
		}
		return l.tok(Number, start), true

	case c == '"':
		l.quoted('"')
		return l.tok(String, start), true

	case c == '\'':
		l.quoted('\'')
		return l.tok(Char, start), true
	}

	for _, p := range punctuators {
		if strings.HasPrefix(l.text[l.pos:], p) {
			l.pos += len(p)
			return l.tok(Punct, start), true
		}
	}
	l.pos++
	return l.tok(Other, start), true
}

// splice returns the length of a backslash-newline at i, or 0.
func (l *lexer) splice(i int) int {
	if i >= len(l.text) || l.text[i] != '\\' {
		return 0
	}
	j := i + 1
	for j < len(l.text) && (l.text[j] == ' ' || l.text[j] == '\t' || l.text[j] == '\r') {
		j++
	}
	if j < len(l.text) && l.text[j] == '\n' {
		return j + 1 - i
	}
	return 0
}

// quoted consumes a quoted literal starting at the opening quote. An
// unterminated literal ends at the end of the line.
func (l *lexer) quoted(q byte) {
	l.pos++
	for l.pos < len(l.text) {
		b := l.text[l.pos]
		switch {
		case b == '\\' && l.pos+1 < len(l.text):
			l.pos += 2
		case b == q:
			l.pos++
			return
		case b == '\n':
			return
		default:
			l.pos++
		}
	}
}

// rawString consumes R"delim( ... )delim".
func (l *lexer) rawString() {
	open := strings.IndexByte(l.text[l.pos:], '(')
	if open < 0 {
		l.quoted('"')
		return
	}
	delim := l.text[l.pos+1 : l.pos+open]
	closing := ")" + delim + "\""
	end := strings.Index(l.text[l.pos+open:], closing)
	if end < 0 {
		l.pos = len(l.text)
		return
	}
	l.pos += open + end + len(closing)
}

func isHSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\v' || b == '\f'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b >= 0x80
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// countNewlines returns the number of line breaks in s.
func countNewlines(s string) int {
	return strings.Count(s, "\n")
}
