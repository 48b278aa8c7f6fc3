// Package extract converts declaration cursors of a parsed C++ translation
// unit into documentation entities.
//
// Extraction works on the cursor interface of the parser package. Names,
// comments and locations come from the cursor; return types and qualifiers
// are read from the declaration as written, so macro invocations in a
// declaration appear in the entity exactly as the user spelled them.
//
// The extractors report *InvariantError when handed a cursor of the wrong
// kind or a free function with member qualifiers. Any such error aborts the
// extraction of the whole unit.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/parser"
)

// Extract walks the cursor tree below root in source order and appends every
// function and member function declared in the main file to file.
// Declarations from included headers, constructors, destructors and
// out-of-line definitions of qualified names are skipped.
func Extract(root parser.Cursor, file *entity.File, mainPath string) error {
	w := &walker{file: file, main: filepath.Clean(mainPath)}
	return w.visit(root.Children(), "")
}

type walker struct {
	file *entity.File
	main string
}

func (w *walker) visit(cursors []parser.Cursor, scope string) error {
	for _, cur := range cursors {
		switch cur.Kind() {
		case parser.Namespace:
			if err := w.visit(cur.Children(), joinScope(scope, cur.Name())); err != nil {
				return err
			}
		case parser.LinkageSpec:
			if err := w.visit(cur.Children(), scope); err != nil {
				return err
			}
		case parser.ClassDecl, parser.StructDecl:
			if cur.Name() == "" {
				continue
			}
			if err := w.visit(cur.Children(), joinScope(scope, cur.Name())); err != nil {
				return err
			}
		case parser.FunctionDecl:
			if !w.record(cur) {
				continue
			}
			f, err := ParseFunction(scope, cur)
			if err != nil {
				return err
			}
			w.file.Append(f)
		case parser.CXXMethod:
			if !w.record(cur) {
				continue
			}
			m, err := ParseMemberFunction(scope, cur)
			if err != nil {
				return err
			}
			w.file.Append(m)
		}
	}
	return nil
}

// record reports whether a function cursor belongs in the entity log.
func (w *walker) record(cur parser.Cursor) bool {
	if strings.Contains(cur.Name(), "::") {
		return false
	}
	file := cur.Location().File
	return file != "" && filepath.Clean(file) == w.main
}

func joinScope(scope, name string) string {
	switch {
	case name == "":
		return scope
	case scope == "":
		return name
	}
	return scope + "::" + name
}
