package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cxdoc/cxdoc/internal/config"
	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/macro"
	"github.com/cxdoc/cxdoc/internal/parser"
)

func testConfig(flags []string, dirs ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Compile.Flags = flags
	cfg.Document.Directories = dirs
	cfg.Run.Jobs = 2
	return cfg
}

func TestProcessMacroDefault(t *testing.T) {
	p := New(testConfig(nil), macro.MapLoader{}, nil)
	file, err := p.Process(context.Background(), Unit{
		Path:   "/src/main.cpp",
		Source: []byte("#define N 4\nint f(int x = N);\n"),
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !file.Sealed() {
		t.Error("expected sealed file")
	}
	if file.Len() != 2 {
		t.Fatalf("expected 2 entities, got %d", file.Len())
	}

	def, ok := file.At(0).(*entity.MacroDefinition)
	if !ok || def.Name() != "N" || def.Replacement != "4" || def.Line != 1 {
		t.Errorf("unexpected macro entity %+v", file.At(0))
	}

	fn, ok := file.At(1).(*entity.Function)
	if !ok || fn.Name() != "f" {
		t.Fatalf("unexpected function entity %+v", file.At(1))
	}
	if fn.Return.Display != "int" {
		t.Errorf("return = %q", fn.Return.Display)
	}
	if len(fn.Parameters) != 1 {
		t.Fatalf("expected one parameter, got %d", len(fn.Parameters))
	}
	x := fn.Parameters[0]
	if x.Name() != "x" || x.Type.Display != "int" || x.Default != "N" {
		t.Errorf("unexpected parameter %+v", x)
	}
}

func TestProcessIncludes(t *testing.T) {
	loader := macro.MapLoader{
		"/proj/include/lib.h":    "void documented();\n",
		"/proj/third/vendor.h":   "#define VENDOR 1\nvoid vendored();\n",
		"/proj/include/sub/in.h": "void nested();\n",
	}
	src := "#include <lib.h>\n#include <vendor.h>\n#include <sub/in.h>\nvoid local();\n"
	flags := []string{"-I/proj/include", "-I", "/proj/third"}

	t.Run("exact directories", func(t *testing.T) {
		p := New(testConfig(flags, "/proj/include"), loader, nil)
		file, err := p.Process(context.Background(), Unit{Path: "/proj/src/main.cpp", Source: []byte(src)})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}

		var names []string
		for _, e := range file.Entities() {
			names = append(names, string(e.Kind())+":"+e.Name())
		}
		want := []string{"include:lib.h", "function:local"}
		if len(names) != len(want) {
			t.Fatalf("expected %v, got %v", want, names)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("entity %d: got %s, want %s", i, names[i], want[i])
			}
		}
		inc := file.At(0).(*entity.InclusionDirective)
		if inc.IncludeKind != entity.SystemInclude {
			t.Errorf("expected system include, got %s", inc.IncludeKind)
		}
	})

	t.Run("directory trees", func(t *testing.T) {
		cfg := testConfig(flags, "/proj/include")
		cfg.Document.Recursive = true
		file, err := New(cfg, loader, nil).Process(context.Background(), Unit{Path: "/proj/src/main.cpp", Source: []byte(src)})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if file.Index("sub/in.h") < 0 {
			t.Errorf("expected nested include to be recorded, got %+v", file.Entities())
		}
		if file.Index("nested") >= 0 {
			t.Error("nested header must not be expanded")
		}
	})
}

func TestProcessReadsSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cpp")
	if err := os.WriteFile(path, []byte("void f();\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	file, err := New(testConfig(nil), nil, nil).Process(context.Background(), Unit{Path: path})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if file.Len() != 1 || file.At(0).Name() != "f" {
		t.Errorf("unexpected entities %+v", file.Entities())
	}

	_, err = New(testConfig(nil), nil, nil).Process(context.Background(), Unit{Path: filepath.Join(dir, "missing.cpp")})
	var readErr *parser.FileReadError
	if !errors.As(err, &readErr) {
		t.Errorf("expected FileReadError, got %v", err)
	}
}

func TestProcessErrors(t *testing.T) {
	t.Run("error directive", func(t *testing.T) {
		_, err := New(testConfig(nil), macro.MapLoader{}, nil).Process(context.Background(), Unit{
			Path:   "/src/main.cpp",
			Source: []byte("#error stop\n"),
		})
		var merr *macro.Error
		if !errors.As(err, &merr) {
			t.Errorf("expected macro error, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(testConfig(nil), macro.MapLoader{}, nil).Process(ctx, Unit{
			Path:   "/src/main.cpp",
			Source: []byte("void f();\n"),
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestProcessAll(t *testing.T) {
	loader := macro.MapLoader{
		"/src/a.cpp": "void a();\n",
		"/src/b.cpp": "#error broken\n",
		"/src/c.cpp": "namespace ns { int c(int); }\n",
	}
	units := []Unit{{Path: "/src/a.cpp"}, {Path: "/src/b.cpp"}, {Path: "/src/c.cpp"}}

	outcomes := New(testConfig(nil), loader, nil).ProcessAll(context.Background(), units)
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Unit.Path != units[i].Path {
			t.Errorf("outcome %d: unit %s, want %s", i, o.Unit.Path, units[i].Path)
		}
	}
	if outcomes[0].Err != nil || outcomes[0].File.Index("a") != 0 {
		t.Errorf("unexpected outcome for a.cpp: %+v", outcomes[0])
	}
	if outcomes[1].Err == nil || outcomes[1].File != nil {
		t.Errorf("expected failure for b.cpp, got %+v", outcomes[1])
	}
	if outcomes[2].Err != nil {
		t.Fatalf("unexpected error for c.cpp: %v", outcomes[2].Err)
	}
	if fns := outcomes[2].File.Functions(); len(fns) != 1 || fns[0].QualifiedName() != "ns::c" {
		t.Errorf("unexpected functions for c.cpp: %+v", fns)
	}
}

func TestProcessAllMalformedIncludes(t *testing.T) {
	loader := macro.MapLoader{
		"/src/empty.cpp":   "#include \"\nvoid e();\n",
		"/src/open.cpp":    "#include \"abc\nvoid o();\n",
		"/src/bare.cpp":    "#include\nvoid b();\n",
		"/src/good.cpp":    "void g();\n",
		"/src/ab":          "void wrong();\n",
		"/src/unknown.cpp": "#include <missing.h>\nvoid u();\n",
	}
	units := []Unit{
		{Path: "/src/empty.cpp"}, {Path: "/src/open.cpp"}, {Path: "/src/bare.cpp"},
		{Path: "/src/good.cpp"}, {Path: "/src/unknown.cpp"},
	}
	want := []string{"e", "o", "b", "g", "u"}

	outcomes := New(testConfig(nil), loader, nil).ProcessAll(context.Background(), units)
	for i, o := range outcomes {
		if o.Err != nil {
			t.Errorf("%s: unexpected error %v", o.Unit.Path, o.Err)
			continue
		}
		fns := o.File.Functions()
		if len(fns) != 1 || fns[0].Name() != want[i] {
			t.Errorf("%s: unexpected functions %+v", o.Unit.Path, fns)
		}
	}
}

func TestProcessLogsSyntaxErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	file, err := New(testConfig(nil), macro.MapLoader{}, logger).Process(context.Background(), Unit{
		Path:   "/src/main.cpp",
		Source: []byte("void ok();\nint f(;\n"),
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if file.Index("ok") < 0 {
		t.Errorf("expected ok to be extracted, got %+v", file.Entities())
	}
	out := buf.String()
	if !strings.Contains(out, "syntax errors in preprocessed unit") || !strings.Contains(out, "/src/main.cpp:2:") {
		t.Errorf("expected a located syntax error in the log:\n%s", out)
	}
}
