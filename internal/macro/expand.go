package macro

import (
	"fmt"
	"strings"
)

// fileReader walks the tokens of one file and tracks whether the next token
// starts a line, which is where directives are recognized.
type fileReader struct {
	src  *source
	toks []token
	pos  int
	bol  bool
}

func newFileReader(src *source) *fileReader {
	return &fileReader{src: src, toks: lex(src), bol: true}
}

func (r *fileReader) next() (token, bool) {
	if r.pos >= len(r.toks) {
		return token{}, false
	}
	t := r.toks[r.pos]
	r.pos++
	switch t.kind {
	case Newline:
		r.bol = true
	case Space, Comment:
	default:
		r.bol = false
	}
	return t, true
}

// atDirective reports whether the next token is a '#' that starts a line.
func (r *fileReader) atDirective() bool {
	return r.bol && r.pos < len(r.toks) && r.toks[r.pos].isPunct("#")
}

// lookahead returns the index of the first non-blank token, or -1 when the
// file ends or a directive line starts first.
func (r *fileReader) lookahead() int {
	bol := r.bol
	for i := r.pos; i < len(r.toks); i++ {
		t := r.toks[i]
		switch t.kind {
		case Newline:
			bol = true
			continue
		case Space, Comment:
			continue
		}
		if bol && t.isPunct("#") {
			return -1
		}
		return i
	}
	return -1
}

// expander performs macro replacement on a token stream. Tokens come from
// pending (results of earlier replacements, rescanned first) and then from
// the file, if any. Tokens that are not replaced are handed to emit.
type expander struct {
	e       *Engine
	pending []token
	file    *fileReader
	emit    func(token)
	// newlines counts line breaks consumed from the file while collecting
	// macro arguments.
	newlines int
	// inDirective stops argument collection at the end of the pending tokens.
	inDirective bool
}

// expandTokens fully macro-expands toks in isolation.
func (e *Engine) expandTokens(toks []token, inDirective bool) []token {
	var out []token
	x := &expander{e: e, inDirective: inDirective, emit: func(t token) { out = append(out, t) }}
	x.pending = append(x.pending, toks...)
	for len(x.pending) > 0 {
		t := x.pending[0]
		x.pending = x.pending[1:]
		x.handle(t)
	}
	return out
}

func (x *expander) push(toks []token) {
	if len(toks) == 0 {
		return
	}
	merged := make([]token, 0, len(toks)+len(x.pending))
	merged = append(merged, toks...)
	x.pending = append(merged, x.pending...)
}

// handle replaces t if it names a macro, otherwise emits it.
func (x *expander) handle(t token) {
	if t.kind == Ident && !t.hide.has(t.text) {
		if m := x.e.macros[t.text]; m != nil {
			if res, ok := x.replace(m, t); ok {
				x.push(res)
				return
			}
		}
	}
	x.emit(t)
}

// replace expands one invocation of m whose name token is name.
func (x *expander) replace(m *Macro, name token) ([]token, bool) {
	site := name.origin()

	if m.builtin != nil {
		t := m.builtin(x.e, name)
		return x.mark([]token{t}, name.hide, site, name.space), true
	}

	if !m.FunctionLike {
		res := x.subst(m, nil)
		return x.mark(res, name.hide.with(m.Name), site, name.space), true
	}

	if !x.nextIsParen() {
		return nil, false
	}
	args, rparen, consumed, ok := x.collectArgs(m)
	if !ok {
		x.push(consumed)
		return nil, false
	}
	if !x.arity(m, &args) {
		x.e.warn(name, fmt.Sprintf("macro %q invoked with %d arguments", m.Name, len(args)))
		x.push(consumed)
		return nil, false
	}
	end := rparen.origin()
	if end.src == site.src && end.end > site.end {
		site.end = end.end
	}
	res := x.subst(m, args)
	return x.mark(res, name.hide.intersect(rparen.hide).with(m.Name), site, name.space), true
}

// mark adds the hide set and invocation site to the replacement tokens.
func (x *expander) mark(res []token, hs hideset, site span, space bool) []token {
	s := site
	for i := range res {
		res[i].hide = res[i].hide.union(hs)
		res[i].site = &s
	}
	if len(res) > 0 {
		res[0].space = space
	}
	return res
}

func (x *expander) nextIsParen() bool {
	if len(x.pending) > 0 {
		return x.pending[0].isPunct("(")
	}
	if x.file == nil || x.inDirective {
		return false
	}
	i := x.file.lookahead()
	return i >= 0 && x.file.toks[i].isPunct("(")
}

// take returns the next token for argument collection and whether it came
// from the file.
func (x *expander) take() (token, bool, bool) {
	if len(x.pending) > 0 {
		t := x.pending[0]
		x.pending = x.pending[1:]
		return t, false, true
	}
	if x.file == nil || x.inDirective {
		return token{}, false, false
	}
	t, ok := x.file.next()
	return t, true, ok
}

// collectArgs reads a parenthesized argument list. Blank tokens are folded
// into the space flag of the following token. On failure every consumed
// token is returned so it can be pushed back.
func (x *expander) collectArgs(m *Macro) (args [][]token, rparen token, consumed []token, ok bool) {
	var cur []token
	depth := 0
	space := false
	newlines := 0
	for {
		t, fromFile, more := x.take()
		if !more {
			return nil, token{}, consumed, false
		}
		consumed = append(consumed, t)
		if t.blank() {
			space = true
			if fromFile {
				newlines += countNewlines(t.text)
			}
			continue
		}
		t.space = space
		space = false

		switch {
		case t.isPunct("("):
			depth++
			if depth == 1 {
				continue
			}
		case t.isPunct(")"):
			depth--
			if depth == 0 {
				args = append(args, cur)
				x.newlines += newlines
				return args, t, consumed, true
			}
		case t.isPunct(",") && depth == 1:
			if !(m.Variadic && len(args) == len(m.Params)-1) {
				args = append(args, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
}

// arity checks the argument count, allowing an empty argument list for a
// macro without parameters and an omitted variadic part.
func (x *expander) arity(m *Macro, args *[][]token) bool {
	n := len(m.Params)
	switch {
	case len(*args) == n:
		return true
	case n == 0 && len(*args) == 1 && len((*args)[0]) == 0:
		*args = nil
		return true
	case m.Variadic && len(*args) == n-1:
		*args = append(*args, nil)
		return true
	}
	return false
}

// subst builds the replacement list of m for the given arguments.
func (x *expander) subst(m *Macro, args [][]token) []token {
	var out []token
	body := m.body
	// lhsEmpty is set when the last operand written was an empty argument,
	// the placemarker of a following ##.
	lhsEmpty := false

	param := func(t token) int {
		if !m.FunctionLike || t.kind != Ident {
			return -1
		}
		return m.paramIndex(t.text)
	}

	for i := 0; i < len(body); i++ {
		t := body[i]

		if m.FunctionLike && t.isPunct("#") && i+1 < len(body) {
			if pi := param(body[i+1]); pi >= 0 {
				s := stringify(args[pi])
				s.space = t.space
				out = append(out, s)
				lhsEmpty = false
				i++
				continue
			}
		}

		if m.Variadic && t.is(Ident, "__VA_OPT__") && i+1 < len(body) && body[i+1].isPunct("(") {
			j := matchParen(body, i+1)
			if j < 0 {
				out = append(out, t)
				continue
			}
			if vaArgsPresent(args) {
				sub := *m
				sub.body = body[i+2 : j]
				res := x.subst(&sub, args)
				if len(res) > 0 {
					res[0].space = t.space
				}
				out = append(out, res...)
			}
			i = j
			continue
		}

		if t.isPunct("##") && i+1 < len(body) {
			i++
			next := body[i]
			rhs := []token{next}
			if pi := param(next); pi >= 0 {
				rhs = cloneTokens(args[pi])
				// GNU extension: `, ## __VA_ARGS__` drops the comma when
				// the variadic part is empty.
				if len(rhs) == 0 && m.Variadic && pi == len(m.Params)-1 && len(out) > 0 && out[len(out)-1].isPunct(",") {
					out = out[:len(out)-1]
				}
			}
			if len(rhs) == 0 {
				continue
			}
			if lhsEmpty || len(out) == 0 {
				out = append(out, rhs...)
			} else {
				last := len(out) - 1
				pasted := paste(out[last], rhs[0])
				out = append(out[:last], pasted...)
				out = append(out, rhs[1:]...)
			}
			lhsEmpty = false
			continue
		}

		if pi := param(t); pi >= 0 {
			var sub []token
			if i+1 < len(body) && body[i+1].isPunct("##") {
				sub = cloneTokens(args[pi])
			} else {
				sub = x.e.expandTokens(cloneTokens(args[pi]), x.inDirective)
			}
			lhsEmpty = len(sub) == 0
			if len(sub) > 0 {
				sub[0].space = t.space
			}
			out = append(out, sub...)
			continue
		}

		lhsEmpty = false
		out = append(out, t)
	}
	return out
}

func vaArgsPresent(args [][]token) bool {
	return len(args) > 0 && len(args[len(args)-1]) > 0
}

func matchParen(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].isPunct("("):
			depth++
		case toks[i].isPunct(")"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func cloneTokens(toks []token) []token {
	out := make([]token, len(toks))
	copy(out, toks)
	return out
}

// paste joins two tokens with ##. When the result is not a single token
// both operands are kept.
func paste(a, b token) []token {
	toks := lexString(a.text + b.text)
	if len(toks) != 1 {
		return []token{a, b}
	}
	t := a
	t.kind = toks[0].kind
	t.text = toks[0].text
	t.hide = a.hide.intersect(b.hide)
	return []token{t}
}

// stringify implements the # operator.
func stringify(arg []token) token {
	var sb strings.Builder
	sb.WriteByte('"')
	for i, t := range arg {
		if i > 0 && t.space {
			sb.WriteByte(' ')
		}
		if t.kind == String || t.kind == Char {
			for j := 0; j < len(t.text); j++ {
				c := t.text[j]
				if c == '"' || c == '\\' {
					sb.WriteByte('\\')
				}
				sb.WriteByte(c)
			}
			continue
		}
		sb.WriteString(t.text)
	}
	sb.WriteByte('"')
	return token{kind: String, text: sb.String()}
}
