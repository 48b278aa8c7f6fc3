package config

import "strings"

// Op is the kind of a compile flag.
type Op int

const (
	// Define is -D name[=value].
	Define Op = iota
	// Undefine is -U name.
	Undefine
	// Include is -I path.
	Include
)

// String returns the flag spelling.
func (o Op) String() string {
	switch o {
	case Define:
		return "-D"
	case Undefine:
		return "-U"
	case Include:
		return "-I"
	default:
		return "?"
	}
}

// Action is one recognized compile flag with its argument.
type Action struct {
	Op  Op
	Arg string
}

// CompileConfig is the compile configuration handed to the preprocessor:
// flags in command-line order, then system include directories.
type CompileConfig struct {
	Actions         []Action
	SysIncludePaths []string
}

// ParseCompileFlags turns a compiler-style flag list into actions.
// -D, -U and -I are accepted as a separate following token or concatenated
// (-DNDEBUG, -Iinclude). Unrecognized flags are ignored, as is a trailing
// flag whose argument is missing.
func ParseCompileFlags(flags []string) CompileConfig {
	var cc CompileConfig
	for i := 0; i < len(flags); i++ {
		f := flags[i]
		op, ok := flagOp(f)
		if !ok {
			continue
		}
		arg := f[2:]
		if arg == "" {
			if i+1 >= len(flags) {
				break
			}
			i++
			arg = flags[i]
		}
		cc.Actions = append(cc.Actions, Action{Op: op, Arg: arg})
	}
	return cc
}

func flagOp(f string) (Op, bool) {
	switch {
	case strings.HasPrefix(f, "-D"):
		return Define, true
	case strings.HasPrefix(f, "-U"):
		return Undefine, true
	case strings.HasPrefix(f, "-I"):
		return Include, true
	}
	return 0, false
}

// CompileConfig returns the parsed compile section.
func (c *Config) CompileConfig() CompileConfig {
	cc := ParseCompileFlags(c.Compile.Flags)
	cc.SysIncludePaths = append([]string(nil), c.Compile.SysIncludePaths...)
	return cc
}
