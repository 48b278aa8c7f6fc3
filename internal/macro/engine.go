// Package macro is a C/C++ preprocessor. It runs directives, expands macros
// and reports every definition, undefinition, include and warning to a set
// of hooks that decide what happens next. The output carries a source map
// back to the files that were read.
package macro

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxIncludeDepth bounds include nesting when Options leaves it zero.
const DefaultMaxIncludeDepth = 200

// Options configure an Engine.
type Options struct {
	// Loader reads headers. Defaults to OSLoader.
	Loader Loader
	Hooks  Hooks
	// MaxIncludeDepth defaults to DefaultMaxIncludeDepth.
	MaxIncludeDepth int
	// Now supplies __DATE__ and __TIME__. Defaults to time.Now.
	Now func() time.Time
}

// Result is the output of one run.
type Result struct {
	Text     string
	Map      *SourceMap
	Warnings []Diagnostic
}

// Engine preprocesses translation units. Macros defined with Define survive
// across runs; definitions made by a file do not.
type Engine struct {
	loader   Loader
	hooks    Hooks
	maxDepth int
	nowFn    func() time.Time

	macros map[string]*Macro
	search searchPath

	// per run
	w        *writer
	cur      *frame
	once     map[string]bool
	counter  int
	warnings []Diagnostic
	started  time.Time
}

// frame is a file being processed.
type frame struct {
	src   *source
	r     *fileReader
	depth int
	// presumed name and line offset set by #line
	name      string
	lineDelta int
}

// New returns an engine with the builtin macros defined.
func New(opts Options) *Engine {
	e := &Engine{
		loader:   opts.Loader,
		hooks:    opts.Hooks,
		maxDepth: opts.MaxIncludeDepth,
		nowFn:    opts.Now,
		macros:   builtinMacros(),
	}
	if e.loader == nil {
		e.loader = OSLoader{}
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxIncludeDepth
	}
	if e.nowFn == nil {
		e.nowFn = time.Now
	}
	return e
}

// Define adds a command-line style definition: NAME, NAME=VALUE or F(x)=BODY.
func (e *Engine) Define(spec string) error {
	m, ok := parseCommandLineDefine(spec)
	if !ok {
		return fmt.Errorf("invalid macro definition %q", spec)
	}
	e.macros[m.Name] = m
	return nil
}

// Undefine removes a definition.
func (e *Engine) Undefine(name string) {
	delete(e.macros, name)
}

// Lookup returns the current definition of name.
func (e *Engine) Lookup(name string) (*Macro, bool) {
	m, ok := e.macros[name]
	return m, ok
}

// AddIncludePath appends a -I directory to the search path.
func (e *Engine) AddIncludePath(dir string) {
	e.search.user = append(e.search.user, dir)
}

// AddSysIncludePath appends a system directory to the search path. System
// directories are searched after every -I directory.
func (e *Engine) AddSysIncludePath(dir string) {
	e.search.system = append(e.search.system, dir)
}

// Preprocess runs the preprocessor over source, whose file name is path.
func (e *Engine) Preprocess(path string, source []byte) (*Result, error) {
	saved := make(map[string]*Macro, len(e.macros))
	for k, v := range e.macros {
		saved[k] = v
	}
	defer func() { e.macros = saved }()

	e.w = newWriter()
	e.once = map[string]bool{}
	e.counter = 0
	e.warnings = nil
	e.started = e.nowFn()

	if err := e.processFile(newSource(path, source, -1), 0); err != nil {
		return nil, err
	}
	e.w.flushNewlines()
	return &Result{Text: e.w.text(), Map: e.w.smap, Warnings: e.warnings}, nil
}

func (e *Engine) now() time.Time { return e.started }

func (e *Engine) presumedFile(at token) string {
	o := at.origin()
	if e.cur != nil && (o.src == nil || o.src == e.cur.src) {
		return e.cur.name
	}
	return o.src.path
}

func (e *Engine) presumedLine(at token) uint32 {
	o := at.origin()
	if o.src == nil {
		if e.cur == nil {
			return 0
		}
		o.src, o.start = e.cur.src, e.cur.r.offset()
	}
	line, _ := o.src.lineCol(o.start)
	if e.cur != nil && o.src == e.cur.src {
		return uint32(int(line) + e.cur.lineDelta)
	}
	return line
}

// offset is the position of the next unread token.
func (r *fileReader) offset() int {
	if r.pos < len(r.toks) {
		return r.toks[r.pos].off
	}
	return len(r.src.text)
}

func (e *Engine) location(at token) Location {
	loc := Location{}
	if e.cur != nil {
		loc.Depth = e.cur.depth
		loc.File = e.cur.src.path
	}
	o := at.origin()
	if o.src == nil {
		return loc
	}
	loc.File = o.src.path
	loc.Offset = o.start
	loc.Line, loc.Column = o.src.lineCol(o.start)
	return loc
}

// warn reports a warning unless the hooks suppress it.
func (e *Engine) warn(at token, msg string) {
	ev := WarningEvent{Location: e.location(at), Message: msg}
	if e.hooks.warning(ev) == Suppress {
		return
	}
	e.warnings = append(e.warnings, Diagnostic{File: ev.File, Line: ev.Line, Message: msg})
}

func (e *Engine) fail(at token, msg string, err error) error {
	loc := e.location(at)
	return &Error{File: loc.File, Line: loc.Line, Message: msg, Err: err}
}

func (e *Engine) emit(t token) {
	if t.expanded() {
		e.w.expanded(t)
		return
	}
	if t.src == nil {
		e.w.synthesized(t.text)
		return
	}
	e.w.source(t)
}

// skipped writes only the line structure of t.
func (e *Engine) skipped(t token) {
	if t.kind == Newline {
		e.w.source(t)
		return
	}
	if n := countNewlines(t.text); n > 0 {
		e.w.synthesized(strings.Repeat("\n", n))
	}
}

func (e *Engine) processFile(src *source, depth int) error {
	e.w.smap.sources[src.path] = src
	f := &frame{src: src, r: newFileReader(src), depth: depth, name: src.path}
	prev := e.cur
	e.cur = f
	defer func() { e.cur = prev }()

	cond := &condStack{}
	x := &expander{e: e, file: f.r, emit: e.emit}
	for {
		if len(x.pending) > 0 {
			t := x.pending[0]
			x.pending = x.pending[1:]
			x.handle(t)
			continue
		}
		if x.newlines > 0 {
			e.w.pendingNewlines += x.newlines
			x.newlines = 0
		}
		if f.r.atDirective() {
			if err := e.directive(f, cond); err != nil {
				return err
			}
			continue
		}
		t, ok := f.r.next()
		if !ok {
			break
		}
		if !cond.Active() {
			e.skipped(t)
			continue
		}
		x.handle(t)
	}

	if cond.Depth() != 0 {
		src := token{src: src, off: len(src.text), end: len(src.text)}
		e.warn(src, fmt.Sprintf("unterminated conditional directive started at line %d", cond.UnclosedLine()))
	}
	return nil
}

// readDirective consumes a directive line. It returns the '#' token and the
// non-blank tokens after it, with whitespace folded into the space flag.
func (e *Engine) readDirective(f *frame) (token, []token) {
	hash, _ := f.r.next()
	var toks []token
	space := false
	for {
		if f.r.pos >= len(f.r.toks) {
			return hash, toks
		}
		t := f.r.toks[f.r.pos]
		if t.kind == Newline {
			return hash, toks
		}
		f.r.next()
		if n := countNewlines(t.text); n > 0 {
			e.w.synthesized(strings.Repeat("\n", n))
		}
		if t.blank() {
			space = true
			continue
		}
		t.space = space
		space = false
		toks = append(toks, t)
	}
}

func (e *Engine) directive(f *frame, cond *condStack) error {
	hash, toks := e.readDirective(f)
	if len(toks) == 0 {
		return nil
	}
	name, args := toks[0], toks[1:]
	if name.kind != Ident {
		if cond.Active() && name.kind != Number {
			e.warn(hash, fmt.Sprintf("invalid preprocessing directive #%s", name.text))
		}
		return nil
	}
	line, _ := f.src.lineCol(hash.off)

	switch name.text {
	case "if":
		cond.Push(func() bool { return e.condition(hash, args, f) }, line)
		return nil
	case "ifdef", "ifndef":
		want := name.text == "ifdef"
		cond.Push(func() bool { return e.isDefined(hash, name.text, args) == want }, line)
		return nil
	case "elif":
		return e.condError(hash, cond.Elif(func() bool { return e.condition(hash, args, f) }))
	case "elifdef", "elifndef":
		want := name.text == "elifdef"
		return e.condError(hash, cond.Elif(func() bool { return e.isDefined(hash, name.text, args) == want }))
	case "else":
		return e.condError(hash, cond.Else())
	case "endif":
		return e.condError(hash, cond.Pop())
	}

	if !cond.Active() {
		return nil
	}

	switch name.text {
	case "define":
		e.define(hash, args)
	case "undef":
		e.undef(hash, args)
	case "include", "include_next", "import":
		return e.include(f, hash, args, name.text == "include_next")
	case "line":
		e.line(f, hash, args)
	case "error":
		return e.fail(hash, "#error "+rawText(args), nil)
	case "warning":
		e.warn(hash, "#warning "+rawText(args))
	case "pragma":
		if len(args) > 0 && args[0].is(Ident, "once") {
			e.once[f.src.path] = true
			return nil
		}
		e.w.ensureLineStart()
		e.w.source(hash)
		for _, t := range toks {
			if t.space {
				e.w.synthesized(" ")
			}
			e.w.source(t)
		}
	case "ident", "sccs":
	default:
		e.warn(hash, fmt.Sprintf("invalid preprocessing directive #%s", name.text))
	}
	return nil
}

func (e *Engine) condError(at token, err error) error {
	if err != nil {
		e.warn(at, err.Error())
	}
	return nil
}

// rawText is the spelling of directive operands for diagnostics.
func rawText(toks []token) string {
	return spell(toks)
}

func (e *Engine) condition(hash token, args []token, f *frame) bool {
	if len(args) == 0 {
		e.warn(hash, "#if with no expression")
		return false
	}
	v, err := e.evalCondition(cloneTokens(args), f.src)
	if err != nil {
		e.warn(hash, err.Error())
		return false
	}
	return v
}

func (e *Engine) isDefined(hash token, directive string, args []token) bool {
	if len(args) == 0 || args[0].kind != Ident {
		e.warn(hash, fmt.Sprintf("no macro name given in #%s directive", directive))
		return false
	}
	_, ok := e.macros[args[0].text]
	return ok
}

func (e *Engine) define(hash token, args []token) {
	m, ok := parseDefine(args)
	if !ok {
		e.warn(hash, "malformed #define")
		return
	}
	if m.Name == "defined" {
		e.warn(hash, "\"defined\" cannot be used as a macro name")
		return
	}
	if old, exists := e.macros[m.Name]; exists && !sameDefinition(old, m) {
		e.warn(hash, fmt.Sprintf("%q redefined", m.Name))
	}
	if e.hooks.define(DefineEvent{Location: e.location(hash), Macro: m}) == Suppress {
		return
	}
	e.macros[m.Name] = m
}

func (e *Engine) undef(hash token, args []token) {
	if len(args) == 0 || args[0].kind != Ident {
		e.warn(hash, "no macro name given in #undef directive")
		return
	}
	name := args[0].text
	if e.hooks.undefine(UndefineEvent{Location: e.location(hash), Name: name}) == Suppress {
		return
	}
	delete(e.macros, name)
}

func (e *Engine) include(f *frame, hash token, args []token, next bool) error {
	name, system, ok := headerName(args)
	if !ok {
		name, system, ok = headerName(e.expandTokens(cloneTokens(args), true))
	}
	if !ok {
		e.warn(hash, "#include expects \"FILENAME\" or <FILENAME>")
		return nil
	}

	resolved, dirIndex, found := e.search.find(e.loader, name, system, next, f.src)
	ev := IncludeEvent{
		Location: e.location(hash),
		Path:     name,
		System:   system,
		Next:     next,
		Resolved: resolved,
		Found:    found,
	}
	decision, text := e.hooks.include(ev)
	if text != "" {
		e.w.ensureLineStart()
		e.w.synthesized(text)
		if !strings.HasSuffix(text, "\n") {
			e.w.synthesized("\n")
		}
		// The injected line stands in for the directive's line break.
		if t, ok := f.r.next(); ok && t.kind != Newline {
			f.r.pos--
		}
	}
	if decision == Suppress {
		return nil
	}
	if !found {
		e.warn(hash, fmt.Sprintf("%s: file not found", name))
		return nil
	}
	if e.once[resolved] {
		return nil
	}
	if f.depth+1 > e.maxDepth {
		return e.fail(hash, fmt.Sprintf("#include nested too deeply including %s", name), ErrIncludeDepth)
	}
	data, err := e.loader.ReadFile(resolved)
	if err != nil {
		return e.fail(hash, fmt.Sprintf("cannot read %s", resolved), err)
	}
	e.w.ensureLineStart()
	if err := e.processFile(newSource(resolved, data, dirIndex), f.depth+1); err != nil {
		return err
	}
	e.w.ensureLineStart()
	return nil
}

// line applies #line N ["file"].
func (e *Engine) line(f *frame, hash token, args []token) {
	toks := e.expandTokens(cloneTokens(args), true)
	if len(toks) == 0 || toks[0].kind != Number {
		e.warn(hash, "#line directive requires a positive integer argument")
		return
	}
	n, err := strconv.Atoi(toks[0].text)
	if err != nil || n <= 0 {
		e.warn(hash, fmt.Sprintf("%q is not a valid line number", toks[0].text))
		return
	}
	actual, _ := f.src.lineCol(hash.off)
	f.lineDelta = n - int(actual+1)
	if len(toks) > 1 && toks[1].kind == String {
		if s, err := strconv.Unquote(toks[1].text); err == nil {
			f.name = s
		}
	}
}

// condFrame is one level of #if nesting.
type condFrame struct {
	parentActive bool
	active       bool
	taken        bool
	sawElse      bool
	line         uint32
}

type condStack struct {
	frames []condFrame
}

var (
	errElifWithoutIf  = errors.New("#elif without #if")
	errElifAfterElse  = errors.New("#elif after #else")
	errElseWithoutIf  = errors.New("#else without #if")
	errElseAfterElse  = errors.New("#else after #else")
	errEndifWithoutIf = errors.New("#endif without #if")
)

// Active reports whether lines at the current level are compiled.
func (c *condStack) Active() bool {
	n := len(c.frames)
	return n == 0 || c.frames[n-1].active
}

// Depth is the nesting level.
func (c *condStack) Depth() int { return len(c.frames) }

// UnclosedLine is the line of the innermost open conditional.
func (c *condStack) UnclosedLine() uint32 {
	if len(c.frames) == 0 {
		return 0
	}
	return c.frames[len(c.frames)-1].line
}

// Push opens a conditional. eval is not called inside an inactive region.
func (c *condStack) Push(eval func() bool, line uint32) {
	parent := c.Active()
	v := parent && eval()
	c.frames = append(c.frames, condFrame{parentActive: parent, active: v, taken: v, line: line})
}

// Elif switches to an #elif branch. eval is only called when no earlier
// branch was taken.
func (c *condStack) Elif(eval func() bool) error {
	if len(c.frames) == 0 {
		return errElifWithoutIf
	}
	top := &c.frames[len(c.frames)-1]
	if top.sawElse {
		return errElifAfterElse
	}
	if !top.parentActive || top.taken {
		top.active = false
		return nil
	}
	top.active = eval()
	top.taken = top.active
	return nil
}

func (c *condStack) Else() error {
	if len(c.frames) == 0 {
		return errElseWithoutIf
	}
	top := &c.frames[len(c.frames)-1]
	if top.sawElse {
		return errElseAfterElse
	}
	top.sawElse = true
	top.active = top.parentActive && !top.taken
	top.taken = true
	return nil
}

func (c *condStack) Pop() error {
	if len(c.frames) == 0 {
		return errEndifWithoutIf
	}
	c.frames = c.frames[:len(c.frames)-1]
	return nil
}
