package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cxdoc/cxdoc/internal/output"
)

// resetFlags restores the package-level flag state between runs of rootCmd.
func resetFlags() {
	verbose = false
	configPath = ""
	forAgents = false
	outputFormat = "yaml"
	outputDensity = "medium"
	compileFlags = nil
	docDirs = nil
	jobs = 0
	extractExcludes = nil
	preprocessEntities = false
	initForce = false

	var visit func(c *cobra.Command)
	visit = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		for _, sub := range c.Commands() {
			visit(sub)
		}
	}
	visit(rootCmd)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.yaml")
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.cpp", "#define N 4\n/// Doc.\nint f(int x = N);\n")

	out, err := execute(t, "extract", "--config", noConfig(t), path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	for _, want := range []string{"kind: macro", "name: N", "kind: function", "name: f", "default: N", "comment: /// Doc."} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestExtractCommandJSONWithDefines(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.cpp", "#ifdef FEATURE\nvoid on();\n#endif\nvoid always();\n")

	out, err := execute(t, "extract", "--config", noConfig(t), "--format", "json", "-DFEATURE", path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var file output.FileOutput
	if err := json.Unmarshal([]byte(out), &file); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	var names []string
	for _, e := range file.Entities {
		names = append(names, e.Name)
	}
	if !reflect.DeepEqual(names, []string{"on", "always"}) {
		t.Errorf("expected [on always], got %v", names)
	}
}

func TestExtractCommandDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.cpp", "void a();\n")
	writeSource(t, dir, "b.cpp", "#error broken\n")

	out, err := execute(t, "extract", "--config", noConfig(t), "--jobs", "2", dir)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 units failed") {
		t.Errorf("expected failure summary, got %v", err)
	}
	if !strings.Contains(out, "failed:") || !strings.Contains(out, "name: a") {
		t.Errorf("expected files and failed units in output:\n%s", out)
	}
}

func TestExtractCommandMissingFile(t *testing.T) {
	if _, err := execute(t, "extract", "--config", noConfig(t), filepath.Join(t.TempDir(), "nope.cpp")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPreprocessCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.cpp", "#define N 4\nint x = N;\n")

	out, err := execute(t, "preprocess", "--config", noConfig(t), path)
	if err != nil {
		t.Fatalf("preprocess failed: %v", err)
	}
	if !strings.Contains(out, "int x = 4;") {
		t.Errorf("expected expanded text, got:\n%s", out)
	}

	out, err = execute(t, "preprocess", "--config", noConfig(t), "--entities", "--density", "sparse", path)
	if err != nil {
		t.Fatalf("preprocess --entities failed: %v", err)
	}
	if !strings.Contains(out, "kind: macro") || strings.Contains(out, "replacement:") {
		t.Errorf("unexpected entity output:\n%s", out)
	}
}

func TestInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.cpp", "void f();\n")

	if _, err := execute(t, "extract", "--config", noConfig(t), "--format", "xml", path); err == nil {
		t.Error("expected error for invalid format")
	}
	if _, err := execute(t, "extract", "--config", noConfig(t), "--density", "smart", path); err == nil {
		t.Error("expected error for invalid density")
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Initialized cxdoc config") {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".cxdoc", "config.yaml")); err != nil {
		t.Errorf("expected config file: %v", err)
	}

	out, err = execute(t, "init")
	if err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if !strings.Contains(out, "Already initialized") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, "init", "--force"); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
}

func TestCompileFlagOrder(t *testing.T) {
	var list []string
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.VarP(newCompileFlag("-D", &list), "define", "D", "")
	fs.VarP(newCompileFlag("-U", &list), "undefine", "U", "")
	fs.VarP(newCompileFlag("-I", &list), "include-dir", "I", "")

	if err := fs.Parse([]string{"-DA=1", "-U", "B", "-Iinc", "--define", "C"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []string{"-DA=1", "-UB", "-Iinc", "-DC"}
	if !reflect.DeepEqual(list, want) {
		t.Errorf("expected %v, got %v", want, list)
	}
	if got := fs.Lookup("define").Value.String(); got != "[A=1,C]" {
		t.Errorf("unexpected define value %q", got)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "compile:\n  flags: [\"-DBASE\"]\ndocument:\n  directories: [\"include\"]\nrun:\n  jobs: 3\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	resetFlags()
	configPath = cfgPath
	compileFlags = []string{"-DEXTRA", "-Iextra"}
	docDirs = []string{"api"}
	jobs = 7

	cfg, err := loadConfig(extractCmd)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Compile.Flags, []string{"-DBASE", "-DEXTRA", "-Iextra"}) {
		t.Errorf("unexpected flags %v", cfg.Compile.Flags)
	}
	if !reflect.DeepEqual(cfg.Document.Directories, []string{"include", "api"}) {
		t.Errorf("unexpected directories %v", cfg.Document.Directories)
	}
	if cfg.Run.Jobs != 7 {
		t.Errorf("expected jobs 7, got %d", cfg.Run.Jobs)
	}
}

func TestAgentHelp(t *testing.T) {
	out, err := execute(t, "--for-agents", "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if decoded["version"] != Version {
		t.Errorf("unexpected version %v", decoded["version"])
	}
	cmds, _ := decoded["commands"].([]interface{})
	var names []string
	for _, c := range cmds {
		if m, ok := c.(map[string]interface{}); ok {
			names = append(names, m["name"].(string))
		}
	}
	for _, want := range []string{"extract", "init", "preprocess"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s in commands %v", want, names)
		}
	}
}
