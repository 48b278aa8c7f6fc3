package extract

import (
	"fmt"

	"github.com/cxdoc/cxdoc/internal/parser"
)

// InvariantError reports a cursor that breaks the contract an extractor was
// written against: a node of the wrong kind, or a free function carrying
// member qualifiers. It indicates a defect in the tree provider and aborts
// the extraction of the unit.
type InvariantError struct {
	Op       string
	Name     string
	Kind     parser.CursorKind
	Location parser.Location
	Message  string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	loc := ""
	if e.Location.File != "" {
		loc = fmt.Sprintf("%s:%d:%d: ", e.Location.File, e.Location.Line, e.Location.Column)
	}
	return fmt.Sprintf("%s%s: %s %q: %s", loc, e.Op, e.Kind, e.Name, e.Message)
}

func invariant(op string, cur parser.Cursor, format string, args ...any) *InvariantError {
	return &InvariantError{
		Op:       op,
		Name:     cur.Name(),
		Kind:     cur.Kind(),
		Location: cur.Location(),
		Message:  fmt.Sprintf(format, args...),
	}
}

// expectKind checks the kind of cur.
func expectKind(op string, cur parser.Cursor, want parser.CursorKind) error {
	if cur.Kind() != want {
		return invariant(op, cur, "expected %s cursor", want)
	}
	return nil
}
