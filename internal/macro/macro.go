package macro

import (
	"strconv"
	"strings"
)

// Macro is a macro definition known to the engine.
type Macro struct {
	Name         string
	FunctionLike bool
	// Params holds the parameter names. A variadic macro ends with
	// "__VA_ARGS__" for `...` or with the named parameter for `args...`.
	Params   []string
	Variadic bool
	body     []token
	// Predefined is set for builtins and command-line definitions.
	Predefined bool
	builtin    func(e *Engine, at token) token
}

// Body returns the replacement list as text.
func (m *Macro) Body() string {
	return spell(m.body)
}

// ParamList returns the parameter list as written, e.g. "(a, b)" or "(fmt, ...)".
// It is empty for object-like macros.
func (m *Macro) ParamList() string {
	if !m.FunctionLike {
		return ""
	}
	names := make([]string, len(m.Params))
	copy(names, m.Params)
	if m.Variadic && len(names) > 0 {
		last := len(names) - 1
		if names[last] == vaArgs {
			names[last] = "..."
		} else {
			names[last] += "..."
		}
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func (m *Macro) paramIndex(name string) int {
	for i, p := range m.Params {
		if p == name {
			return i
		}
	}
	return -1
}

const vaArgs = "__VA_ARGS__"

// parseDefine builds a Macro from the tokens following `#define`. The tokens
// carry no whitespace tokens; a function-like macro is recognized by a `(`
// directly after the name.
func parseDefine(toks []token) (*Macro, bool) {
	if len(toks) == 0 || toks[0].kind != Ident {
		return nil, false
	}
	m := &Macro{Name: toks[0].text}
	rest := toks[1:]
	if len(rest) > 0 && rest[0].isPunct("(") && !rest[0].space {
		m.FunctionLike = true
		closed := -1
		expectParam := true
		for i := 1; i < len(rest) && closed < 0; i++ {
			t := rest[i]
			switch {
			case t.isPunct(")"):
				closed = i
			case m.Variadic:
				return nil, false
			case expectParam && t.kind == Ident:
				m.Params = append(m.Params, t.text)
				expectParam = false
			case t.isPunct("..."):
				if expectParam {
					m.Params = append(m.Params, vaArgs)
				}
				m.Variadic = true
			case !expectParam && t.isPunct(","):
				expectParam = true
			default:
				return nil, false
			}
		}
		if closed < 0 {
			return nil, false
		}
		rest = rest[closed+1:]
	}
	if len(rest) > 0 {
		body := make([]token, len(rest))
		copy(body, rest)
		body[0].space = false
		m.body = body
	}
	return m, true
}

// parseCommandLineDefine parses the argument of a -D flag: `name`,
// `name=value` or `F(x)=body`. A missing value defines the macro as 1.
func parseCommandLineDefine(spec string) (*Macro, bool) {
	name, value, hasValue := strings.Cut(spec, "=")
	if !hasValue {
		value = "1"
	}
	toks := lexString(name)
	if len(toks) > 1 && toks[1].isPunct("(") {
		toks[1].space = false
	}
	toks = append(toks, markSpace(lexString(value))...)
	m, ok := parseDefine(toks)
	if !ok {
		return nil, false
	}
	m.Predefined = true
	return m, true
}

func markSpace(toks []token) []token {
	if len(toks) > 0 {
		toks[0].space = true
	}
	return toks
}

// sameDefinition reports whether two definitions are identical in the sense
// of the redefinition rule.
func sameDefinition(a, b *Macro) bool {
	if a.FunctionLike != b.FunctionLike || a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	return a.Body() == b.Body()
}

func builtinMacros() map[string]*Macro {
	obj := func(name, value string) *Macro {
		return &Macro{Name: name, body: lexString(value), Predefined: true}
	}
	fn := func(name string, f func(e *Engine, at token) token) *Macro {
		return &Macro{Name: name, Predefined: true, builtin: f}
	}
	table := map[string]*Macro{}
	for _, m := range []*Macro{
		obj("__cplusplus", "201103L"),
		obj("__STDC_HOSTED__", "1"),
		obj("__cxdoc__", "1"),
		fn("__FILE__", func(e *Engine, at token) token {
			return token{kind: String, text: strconv.Quote(e.presumedFile(at))}
		}),
		fn("__LINE__", func(e *Engine, at token) token {
			return token{kind: Number, text: strconv.Itoa(int(e.presumedLine(at)))}
		}),
		fn("__COUNTER__", func(e *Engine, _ token) token {
			n := e.counter
			e.counter++
			return token{kind: Number, text: strconv.Itoa(n)}
		}),
		fn("__DATE__", func(e *Engine, _ token) token {
			return token{kind: String, text: strconv.Quote(e.now().Format("Jan _2 2006"))}
		}),
		fn("__TIME__", func(e *Engine, _ token) token {
			return token{kind: String, text: strconv.Quote(e.now().Format("15:04:05"))}
		}),
	} {
		table[m.Name] = m
	}
	return table
}
