package macro

import (
	"fmt"
	"strconv"
	"strings"
)

// value is an #if operand. Arithmetic follows intmax_t/uintmax_t rules.
type value struct {
	n        int64
	unsigned bool
}

func (v value) truth() bool { return v.n != 0 }

func boolValue(b bool) value {
	if b {
		return value{n: 1}
	}
	return value{}
}

// evalCondition evaluates the controlling expression of #if or #elif.
func (e *Engine) evalCondition(toks []token, from *source) (bool, error) {
	toks, err := e.replaceQueries(toks, from)
	if err != nil {
		return false, err
	}
	toks = e.expandTokens(toks, true)
	p := &exprParser{e: e, toks: toks}
	v, err := p.ternary()
	if err != nil {
		return false, err
	}
	if p.pos < len(p.toks) {
		return false, fmt.Errorf("unexpected %q in #if", p.toks[p.pos].text)
	}
	return v.truth(), nil
}

// replaceQueries resolves defined and the __has_* operators before macro
// expansion, since their operands must not be expanded.
func (e *Engine) replaceQueries(toks []token, from *source) ([]token, error) {
	out := make([]token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind != Ident {
			out = append(out, t)
			continue
		}
		switch t.text {
		case "defined":
			name, n, err := definedOperand(toks[i+1:])
			if err != nil {
				return nil, err
			}
			_, ok := e.macros[name]
			out = append(out, numberToken(ok, t.space))
			i += n
		case "__has_include", "__has_include_next":
			found, n, err := e.hasInclude(toks[i+1:], t.text == "__has_include_next", from)
			if err != nil {
				return nil, err
			}
			out = append(out, numberToken(found, t.space))
			i += n
		case "__has_cpp_attribute", "__has_attribute", "__has_builtin", "__has_feature", "__has_extension":
			end := -1
			if i+1 < len(toks) && toks[i+1].isPunct("(") {
				end = matchParen(toks, i+1)
			}
			if end < 0 {
				return nil, fmt.Errorf("missing '(' after %s", t.text)
			}
			out = append(out, numberToken(false, t.space))
			i = end
		default:
			out = append(out, t)
		}
	}
	return out, nil
}

func numberToken(b bool, space bool) token {
	t := token{kind: Number, text: "0", space: space}
	if b {
		t.text = "1"
	}
	return t
}

// definedOperand reads `X` or `(X)` and returns the name and the number of
// tokens consumed.
func definedOperand(toks []token) (string, int, error) {
	if len(toks) > 0 && toks[0].kind == Ident {
		return toks[0].text, 1, nil
	}
	if len(toks) >= 3 && toks[0].isPunct("(") && toks[1].kind == Ident && toks[2].isPunct(")") {
		return toks[1].text, 3, nil
	}
	return "", 0, fmt.Errorf("operator \"defined\" requires an identifier")
}

func (e *Engine) hasInclude(toks []token, next bool, from *source) (bool, int, error) {
	if len(toks) == 0 || !toks[0].isPunct("(") {
		return false, 0, fmt.Errorf("missing '(' after __has_include")
	}
	end := matchParen(toks, 0)
	if end < 0 {
		return false, 0, fmt.Errorf("missing ')' after __has_include")
	}
	name, system, ok := headerName(toks[1:end])
	if !ok {
		expanded := e.expandTokens(cloneTokens(toks[1:end]), true)
		name, system, ok = headerName(expanded)
	}
	if !ok {
		return false, 0, fmt.Errorf("malformed __has_include operand")
	}
	_, _, found := e.search.find(e.loader, name, system, next, from)
	return found, end + 1, nil
}

// headerName extracts a header name from "x.h" or < x.h > tokens.
func headerName(toks []token) (string, bool, bool) {
	if len(toks) == 1 && toks[0].kind == String && strings.HasPrefix(toks[0].text, `"`) {
		s := toks[0].text
		if len(s) < 2 || !strings.HasSuffix(s, `"`) {
			return "", false, false
		}
		return s[1 : len(s)-1], false, true
	}
	if len(toks) >= 2 && toks[0].isPunct("<") && toks[len(toks)-1].isPunct(">") {
		var sb strings.Builder
		for i, t := range toks[1 : len(toks)-1] {
			if i > 0 && t.space {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.text)
		}
		return sb.String(), true, true
	}
	return "", false, false
}

type exprParser struct {
	e    *Engine
	toks []token
	pos  int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) accept(op string) bool {
	if t, ok := p.peek(); ok && t.isPunct(op) {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) ternary() (value, error) {
	cond, err := p.binary(0)
	if err != nil {
		return value{}, err
	}
	if !p.accept("?") {
		return cond, nil
	}
	a, err := p.ternary()
	if err != nil {
		return value{}, err
	}
	if !p.accept(":") {
		return value{}, fmt.Errorf("expected ':' in conditional expression")
	}
	b, err := p.ternary()
	if err != nil {
		return value{}, err
	}
	unsigned := a.unsigned || b.unsigned
	if cond.truth() {
		return value{n: a.n, unsigned: unsigned}, nil
	}
	return value{n: b.n, unsigned: unsigned}, nil
}

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *exprParser) binary(min int) (value, error) {
	lhs, err := p.unary()
	if err != nil {
		return value{}, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != Punct {
			return lhs, nil
		}
		prec, ok := precedence[t.text]
		if !ok || prec <= min {
			return lhs, nil
		}
		p.pos++
		rhs, err := p.binary(prec)
		if err != nil {
			return value{}, err
		}
		lhs, err = apply(t.text, lhs, rhs)
		if err != nil {
			return value{}, err
		}
	}
}

func apply(op string, a, b value) (value, error) {
	unsigned := a.unsigned || b.unsigned
	ua, ub := uint64(a.n), uint64(b.n)
	switch op {
	case "||":
		return boolValue(a.truth() || b.truth()), nil
	case "&&":
		return boolValue(a.truth() && b.truth()), nil
	case "==":
		return boolValue(a.n == b.n), nil
	case "!=":
		return boolValue(a.n != b.n), nil
	case "<", ">", "<=", ">=":
		var less, eq bool
		if unsigned {
			less, eq = ua < ub, ua == ub
		} else {
			less, eq = a.n < b.n, a.n == b.n
		}
		switch op {
		case "<":
			return boolValue(less), nil
		case ">":
			return boolValue(!less && !eq), nil
		case "<=":
			return boolValue(less || eq), nil
		default:
			return boolValue(!less), nil
		}
	case "|":
		return value{n: a.n | b.n, unsigned: unsigned}, nil
	case "^":
		return value{n: a.n ^ b.n, unsigned: unsigned}, nil
	case "&":
		return value{n: a.n & b.n, unsigned: unsigned}, nil
	case "<<":
		return value{n: int64(ua << (ub & 63)), unsigned: a.unsigned}, nil
	case ">>":
		if a.unsigned {
			return value{n: int64(ua >> (ub & 63)), unsigned: true}, nil
		}
		return value{n: a.n >> (ub & 63)}, nil
	case "+":
		return value{n: a.n + b.n, unsigned: unsigned}, nil
	case "-":
		return value{n: a.n - b.n, unsigned: unsigned}, nil
	case "*":
		return value{n: a.n * b.n, unsigned: unsigned}, nil
	case "/", "%":
		if b.n == 0 {
			return value{}, fmt.Errorf("division by zero in #if")
		}
		if unsigned {
			if op == "/" {
				return value{n: int64(ua / ub), unsigned: true}, nil
			}
			return value{n: int64(ua % ub), unsigned: true}, nil
		}
		if op == "/" {
			return value{n: a.n / b.n}, nil
		}
		return value{n: a.n % b.n}, nil
	}
	return value{}, fmt.Errorf("unknown operator %q", op)
}

func (p *exprParser) unary() (value, error) {
	t, ok := p.peek()
	if !ok {
		return value{}, fmt.Errorf("unexpected end of #if expression")
	}
	if t.kind == Punct {
		switch t.text {
		case "!", "-", "+", "~":
			p.pos++
			v, err := p.unary()
			if err != nil {
				return value{}, err
			}
			switch t.text {
			case "!":
				return boolValue(!v.truth()), nil
			case "-":
				return value{n: -v.n, unsigned: v.unsigned}, nil
			case "~":
				return value{n: ^v.n, unsigned: v.unsigned}, nil
			}
			return v, nil
		case "(":
			p.pos++
			v, err := p.ternary()
			if err != nil {
				return value{}, err
			}
			if !p.accept(")") {
				return value{}, fmt.Errorf("missing ')' in #if expression")
			}
			return v, nil
		}
	}
	return p.primary()
}

func (p *exprParser) primary() (value, error) {
	t := p.toks[p.pos]
	p.pos++
	switch t.kind {
	case Number:
		return parseNumber(t.text)
	case Char:
		return parseChar(t.text)
	case Ident:
		switch t.text {
		case "true":
			return value{n: 1}, nil
		case "defined":
			name, n, err := definedOperand(p.toks[p.pos:])
			if err != nil {
				return value{}, err
			}
			p.pos += n
			_, ok := p.e.macros[name]
			return boolValue(ok), nil
		}
		// Identifiers left after expansion evaluate to 0.
		return value{}, nil
	}
	return value{}, fmt.Errorf("unexpected %q in #if", t.text)
}

func parseNumber(text string) (value, error) {
	s := strings.ReplaceAll(text, "'", "")
	unsigned := false
	for len(s) > 0 {
		c := s[len(s)-1]
		if c == 'u' || c == 'U' {
			unsigned = true
		} else if c != 'l' && c != 'L' {
			break
		}
		s = s[:len(s)-1]
	}
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return value{}, fmt.Errorf("invalid integer constant %q in #if", text)
	}
	if n > 1<<63-1 {
		unsigned = true
	}
	return value{n: int64(n), unsigned: unsigned}, nil
}

func parseChar(text string) (value, error) {
	i := strings.IndexByte(text, '\'')
	if i < 0 || len(text) < i+3 {
		return value{}, fmt.Errorf("invalid character constant %s", text)
	}
	body := text[i+1 : len(text)-1]
	v, _, _, err := strconv.UnquoteChar(body, '\'')
	if err != nil {
		return value{}, fmt.Errorf("invalid character constant %s", text)
	}
	return value{n: int64(v)}, nil
}
