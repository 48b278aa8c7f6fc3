package parser

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cxdoc/cxdoc/internal/macro"
)

const testCppSource = `namespace ns {
/// Adds numbers.
int add(int a, int b = 2);
}
`

func parse(t *testing.T, src string) *ParseResult {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	t.Cleanup(p.Close)

	res, err := p.ParseNamed(context.Background(), "test.cpp", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	t.Cleanup(res.Close)
	return res
}

func unit(t *testing.T, src string) Cursor {
	t.Helper()
	return NewCursor(parse(t, src), nil)
}

func kinds(cs []Cursor) []CursorKind {
	out := make([]CursorKind, len(cs))
	for i, c := range cs {
		out[i] = c.Kind()
	}
	return out
}

func TestParser_Parse(t *testing.T) {
	t.Run("parses valid C++ source", func(t *testing.T) {
		res := parse(t, testCppSource)
		if res.Root == nil {
			t.Fatal("expected root node")
		}
		if res.Root.Type() != "translation_unit" {
			t.Errorf("expected translation_unit, got %s", res.Root.Type())
		}
		if res.HasErrors() {
			t.Error("expected no syntax errors")
		}
		if res.FilePath != "test.cpp" {
			t.Errorf("expected file path test.cpp, got %q", res.FilePath)
		}
	})

	t.Run("reports syntax errors", func(t *testing.T) {
		res := parse(t, "int f(;")
		if !res.HasErrors() {
			t.Error("expected syntax errors")
		}
	})
}

func TestParseResult_FindNodes(t *testing.T) {
	res := parse(t, "int f(int);\nvoid g();\nint (*fp)(int);\n")
	decls := res.FindNodes(func(n *sitter.Node) bool { return n.Type() == "function_declarator" })
	if len(decls) != 3 {
		t.Errorf("expected 3 function declarators, got %d", len(decls))
	}

	var visited int
	res.WalkNodes(func(n *sitter.Node) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("expected walk to stop after 3 nodes, visited %d", visited)
	}
}

func TestParseResult_SyntaxErrors(t *testing.T) {
	t.Run("clean source", func(t *testing.T) {
		if errs := parse(t, testCppSource).SyntaxErrors(nil); len(errs) != 0 {
			t.Errorf("expected no syntax errors, got %v", errs)
		}
	})

	t.Run("positions in the parsed text", func(t *testing.T) {
		errs := parse(t, "int a;\nint f(;\n").SyntaxErrors(nil)
		if len(errs) == 0 {
			t.Fatal("expected syntax errors")
		}
		if errs[0].File != "test.cpp" || errs[0].Line != 2 {
			t.Errorf("unexpected first error %v", errs[0])
		}
	})

	t.Run("positions through the source map", func(t *testing.T) {
		src := "#define BAD (;\nint a;\nint f BAD\n"
		res, err := macro.New(macro.Options{Loader: macro.MapLoader{}}).Preprocess("main.cpp", []byte(src))
		if err != nil {
			t.Fatal(err)
		}
		p, err := NewParser()
		if err != nil {
			t.Fatal(err)
		}
		defer p.Close()
		parsed, err := p.ParseNamed(context.Background(), "main.cpp", []byte(res.Text))
		if err != nil {
			t.Fatal(err)
		}
		defer parsed.Close()

		errs := parsed.SyntaxErrors(res.Map)
		if len(errs) == 0 {
			t.Fatal("expected syntax errors")
		}
		if errs[0].File != "main.cpp" || errs[0].Line != 3 {
			t.Errorf("unexpected first error %v", errs[0])
		}
	})
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.cpp", true},
		{"include/a.hpp", true},
		{"a.h", true},
		{"a.go", false},
		{"Makefile", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsSourceFile(tt.path); got != tt.want {
				t.Errorf("IsSourceFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCursorFunction(t *testing.T) {
	tu := unit(t, testCppSource)
	if tu.Kind() != TranslationUnit || tu.Name() != "test.cpp" {
		t.Fatalf("unexpected unit cursor %s %q", tu.Kind(), tu.Name())
	}

	top := tu.Children()
	if len(top) != 1 || top[0].Kind() != Namespace || top[0].Name() != "ns" {
		t.Fatalf("expected namespace ns, got %v", kinds(top))
	}

	members := top[0].Children()
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %v", kinds(members))
	}
	fn := members[0]
	if fn.Kind() != FunctionDecl || fn.Name() != "add" {
		t.Errorf("expected FunctionDecl add, got %s %q", fn.Kind(), fn.Name())
	}
	if fn.Comment() != "/// Adds numbers." {
		t.Errorf("unexpected comment %q", fn.Comment())
	}
	if fn.Spelling() != "int add(int a, int b = 2)" {
		t.Errorf("unexpected spelling %q", fn.Spelling())
	}
	if got := fn.ResultType(); !got.Valid || got.Spelling != "int" {
		t.Errorf("unexpected result type %+v", got)
	}
	if got := fn.Type().Spelling; got != "int (int, int)" {
		t.Errorf("unexpected function type %q", got)
	}
	if loc := fn.Location(); loc.File != "test.cpp" || loc.Line != 3 || loc.Column != 1 {
		t.Errorf("unexpected location %+v", loc)
	}

	params := fn.Children()
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	b := params[1]
	if b.Kind() != ParmDecl || b.Name() != "b" || b.Spelling() != "int b = 2" {
		t.Errorf("unexpected parameter %s %q %q", b.Kind(), b.Name(), b.Spelling())
	}
	if b.Type().Spelling != "int" {
		t.Errorf("unexpected parameter type %q", b.Type().Spelling)
	}
	if b.ResultType().Valid {
		t.Error("parameters have no result type")
	}
}

func TestCursorParameterTypes(t *testing.T) {
	fn := unit(t, "int call(const char* fmt, void (*cb)(int), int (&arr)[4], unsigned long, ...);").Children()[0]
	want := []struct{ name, typ string }{
		{"fmt", "const char*"},
		{"cb", "void(*)(int)"},
		{"arr", "int(&)[4]"},
		{"", "unsigned long"},
	}
	params := fn.Children()
	if len(params) != len(want) {
		t.Fatalf("expected %d parameters, got %d", len(want), len(params))
	}
	for i, w := range want {
		if params[i].Name() != w.name || params[i].Type().Spelling != w.typ {
			t.Errorf("param %d: got %q %q, want %q %q", i, params[i].Name(), params[i].Type().Spelling, w.name, w.typ)
		}
	}
	if got := fn.Type().Spelling; !strings.HasSuffix(got, ", ...)") {
		t.Errorf("expected variadic function type, got %q", got)
	}
}

func TestCursorVoidParameterList(t *testing.T) {
	fns := unit(t, "int x(void);\nint y(void*);\nint z(void p);\n").Children()
	if len(fns) != 3 {
		t.Fatalf("expected 3 functions, got %v", kinds(fns))
	}

	if params := fns[0].Children(); len(params) != 0 {
		t.Errorf("expected no parameters for (void), got %d", len(params))
	}
	if got := fns[0].Type().Spelling; got != "int ()" {
		t.Errorf("unexpected function type %q", got)
	}

	if params := fns[1].Children(); len(params) != 1 || params[0].Type().Spelling != "void*" {
		t.Errorf("expected one void* parameter, got %d", len(params))
	}
	if params := fns[2].Children(); len(params) != 1 || params[0].Name() != "p" {
		t.Errorf("expected named parameter p, got %d", len(params))
	}
}

func TestCursorClass(t *testing.T) {
	src := `struct Widget {
    Widget(int);
    ~Widget();
    virtual void draw() const = 0;
    int size() const { return 0; }
};
`
	top := unit(t, src).Children()
	if len(top) != 1 || top[0].Kind() != StructDecl || top[0].Name() != "Widget" {
		t.Fatalf("expected struct Widget, got %v", kinds(top))
	}

	members := top[0].Children()
	want := []CursorKind{Constructor, Destructor, CXXMethod, CXXMethod}
	got := kinds(members)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	draw := members[2]
	if draw.Name() != "draw" || draw.Spelling() != "virtual void draw() const = 0" {
		t.Errorf("unexpected draw %q %q", draw.Name(), draw.Spelling())
	}
	if draw.ResultType().Spelling != "void" {
		t.Errorf("expected void result, got %q", draw.ResultType().Spelling)
	}
	if size := members[3]; size.Spelling() != "int size() const" {
		t.Errorf("body must not be part of the spelling: %q", size.Spelling())
	}
	if members[1].Name() != "~Widget" {
		t.Errorf("unexpected destructor name %q", members[1].Name())
	}
}

func TestCursorTemplates(t *testing.T) {
	src := "template <typename T, int N>\nT pick(T a);\n"
	top := unit(t, src).Children()
	if len(top) != 1 || top[0].Kind() != FunctionDecl {
		t.Fatalf("expected one function, got %v", kinds(top))
	}
	fn := top[0]
	want := []CursorKind{TemplateTypeParameter, NonTypeTemplateParameter, ParmDecl}
	got := kinds(fn.Children())
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if fn.Children()[0].Name() != "T" || fn.Children()[1].Name() != "N" {
		t.Error("unexpected template parameter names")
	}
	if fn.Spelling() != "T pick(T a)" {
		t.Errorf("unexpected spelling %q", fn.Spelling())
	}
}

func TestCursorDeclarationKinds(t *testing.T) {
	t.Run("function pointer is not a function", func(t *testing.T) {
		top := unit(t, "int (*fp)(int);").Children()
		if len(top) != 1 || top[0].Kind() != Unexposed {
			t.Errorf("expected Unexposed, got %v", kinds(top))
		}
	})

	t.Run("linkage specification", func(t *testing.T) {
		top := unit(t, "extern \"C\" {\nvoid c_fn(void);\n}\nextern \"C\" void one();\n").Children()
		if len(top) != 2 {
			t.Fatalf("expected 2 linkage specs, got %v", kinds(top))
		}
		for _, c := range top {
			if c.Kind() != LinkageSpec || c.Name() != "C" {
				t.Errorf("unexpected cursor %s %q", c.Kind(), c.Name())
			}
			if ch := c.Children(); len(ch) != 1 || ch[0].Kind() != FunctionDecl {
				t.Errorf("expected a function inside the linkage spec, got %v", kinds(ch))
			}
		}
	})

	t.Run("out-of-line definition keeps its qualification", func(t *testing.T) {
		top := unit(t, "void Widget::draw() const {}\n").Children()
		if len(top) != 1 || top[0].Name() != "Widget::draw" {
			t.Errorf("expected Widget::draw, got %v", kinds(top))
		}
	})

	t.Run("trailing return type", func(t *testing.T) {
		fn := unit(t, "auto twice(int x) -> long;").Children()[0]
		if fn.ResultType().Spelling != "long" {
			t.Errorf("expected long, got %q", fn.ResultType().Spelling)
		}
	})

	t.Run("specifiers are not part of the result type", func(t *testing.T) {
		fn := unit(t, "static inline const char* name();").Children()[0]
		if fn.ResultType().Spelling != "const char*" {
			t.Errorf("expected const char*, got %q", fn.ResultType().Spelling)
		}
	})
}

func TestCursorComments(t *testing.T) {
	src := `/// detached

void a();
// plain
void b();
/// one
/// two
void c();
/** block */
void d();
`
	top := unit(t, src).Children()
	want := []string{"", "", "/// one\n/// two", "/** block */"}
	if len(top) != len(want) {
		t.Fatalf("expected %d functions, got %v", len(want), kinds(top))
	}
	for i, w := range want {
		if got := top[i].Comment(); got != w {
			t.Errorf("%s: expected comment %q, got %q", top[i].Name(), w, got)
		}
	}
}

func TestCursorSourceMap(t *testing.T) {
	src := "#define T int\nT f(T x = 3);\n"
	res, err := macro.New(macro.Options{}).Preprocess("main.cpp", []byte(src))
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	p, err := NewParser()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	parsed, err := p.ParseNamed(context.Background(), "main.cpp", []byte(res.Text))
	if err != nil {
		t.Fatal(err)
	}
	defer parsed.Close()

	fn := NewCursor(parsed, res.Map).Children()[0]
	if fn.Spelling() != "T f(T x = 3)" {
		t.Errorf("expected original spelling, got %q", fn.Spelling())
	}
	if fn.ResultType().Spelling != "int" {
		t.Errorf("expected expanded result type, got %q", fn.ResultType().Spelling)
	}
	loc := fn.Location()
	if loc.File != "main.cpp" || loc.Line != 2 || loc.Column != 1 || loc.Offset != 14 {
		t.Errorf("unexpected location %+v", loc)
	}

	x := fn.Children()[0]
	if x.Spelling() != "T x = 3" || x.Type().Spelling != "int" {
		t.Errorf("unexpected parameter %q %q", x.Spelling(), x.Type().Spelling)
	}
}

func TestCursorKindString(t *testing.T) {
	if CXXMethod.String() != "CXXMethod" || ParmDecl.String() != "ParmDecl" {
		t.Error("unexpected kind names")
	}
	if CursorKind(99).String() != "Unknown" {
		t.Error("expected Unknown for out-of-range kind")
	}
}

func TestParseError(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		err := &ParseError{Message: "syntax error", File: "a.cpp", Line: 10, Column: 5}
		if got := err.Error(); got != "a.cpp:10:5: syntax error" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("without file", func(t *testing.T) {
		err := &ParseError{Message: "unexpected token", Line: 1, Column: 1}
		if got := err.Error(); got != "1:1: unexpected token" {
			t.Errorf("unexpected message %q", got)
		}
	})
}
