package macro

import (
	"errors"
	"fmt"
)

// ErrIncludeDepth is returned when includes nest deeper than the limit.
var ErrIncludeDepth = errors.New("include nesting too deep")

// Error is a fatal preprocessing error with location information.
type Error struct {
	File    string
	Line    uint32
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic is a warning the hooks did not suppress.
type Diagnostic struct {
	File    string
	Line    uint32
	Message string
}

// String returns file:line: message.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
}
