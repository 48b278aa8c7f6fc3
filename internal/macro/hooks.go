package macro

// Decision is the answer of a hook to an event.
type Decision int

const (
	// Continue leaves the default behavior in place.
	Continue Decision = iota
	// Suppress skips the default behavior: the include is not opened, the
	// warning is not reported, the definition is not applied.
	Suppress
	// PassThrough forces the default behavior.
	PassThrough
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Suppress:
		return "suppress"
	case PassThrough:
		return "passthrough"
	default:
		return "continue"
	}
}

// Location is where an event happened.
type Location struct {
	File   string
	Line   uint32
	Column uint32
	// Offset is the byte offset of the directive's '#' in File.
	Offset int
	// Depth is the include nesting level of File, 0 for the main file.
	Depth int
}

// WarningEvent is a warning-class diagnostic: #warning, unknown directives,
// unresolved includes, malformed #if expressions.
type WarningEvent struct {
	Location
	Message string
}

// IncludeEvent is fired for #include and #include_next before the engine
// opens the file. The engine has already run its search.
type IncludeEvent struct {
	Location
	// Path is the header name without delimiters.
	Path string
	// System is set for <...> includes.
	System bool
	// Next is set for #include_next.
	Next bool
	// Resolved is the path the search found, empty if Found is false.
	Resolved string
	Found    bool
}

// DefineEvent is fired after a macro definition was parsed.
type DefineEvent struct {
	Location
	Macro *Macro
}

// UndefineEvent is fired for #undef.
type UndefineEvent struct {
	Location
	Name string
}

// Hooks are the policy callbacks of the engine. Every field is optional.
type Hooks struct {
	OnWarning func(WarningEvent) Decision
	// OnInclude may return text that is written to the output in place of
	// the directive, ahead of the included content.
	OnInclude  func(IncludeEvent) (Decision, string)
	OnDefine   func(DefineEvent) Decision
	OnUndefine func(UndefineEvent) Decision
}

func (h Hooks) warning(ev WarningEvent) Decision {
	if h.OnWarning == nil {
		return Continue
	}
	return h.OnWarning(ev)
}

func (h Hooks) include(ev IncludeEvent) (Decision, string) {
	if h.OnInclude == nil {
		return Continue, ""
	}
	return h.OnInclude(ev)
}

func (h Hooks) define(ev DefineEvent) Decision {
	if h.OnDefine == nil {
		return Continue
	}
	return h.OnDefine(ev)
}

func (h Hooks) undefine(ev UndefineEvent) Decision {
	if h.OnUndefine == nil {
		return Continue
	}
	return h.OnUndefine(ev)
}
