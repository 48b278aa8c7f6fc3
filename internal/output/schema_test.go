package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/cxdoc/cxdoc/internal/entity"
)

func sampleFile() *entity.File {
	file := entity.NewFile("main.cpp")
	file.Append(&entity.MacroDefinition{
		MacroName:   "N",
		Replacement: "4",
		Line:        1,
		Position:    entity.Position{Line: 1, Column: 9, Offset: 8},
	})
	file.Append(&entity.InclusionDirective{
		Path:        "lib.h",
		IncludeKind: entity.SystemInclude,
		Position:    entity.Position{Line: 2, Column: 1, Offset: 12},
	})

	f := &entity.Function{
		Scope:        "ns",
		FunctionName: "f",
		DocComment:   "/// Does f.",
		Return:       entity.NewTypeRef(entity.NewType("int"), "int"),
		Info:         entity.DefaultFunctionInfo(),
		Position:     entity.Position{Line: 4, Column: 1, Offset: 40},
	}
	f.AddParameter(&entity.Parameter{
		ParamName: "x",
		Type:      entity.NewTypeRef(entity.NewType("int"), "int"),
		Default:   "N",
	})
	file.Append(f)

	m := &entity.MemberFunction{
		Function: entity.Function{
			Scope:        "ns::Widget",
			FunctionName: "draw",
			Return:       entity.NewTypeRef(entity.NewType("void"), "void"),
			Info:         entity.FunctionInfo{Noexcept: "false", Definition: entity.DefinitionPure},
			Position:     entity.Position{Line: 7, Column: 5, Offset: 80},
		},
		Member: entity.MemberFunctionInfo{Virtual: entity.VirtualPure, CV: entity.CVConst},
	}
	file.Append(m)
	file.Seal()
	return file
}

func TestNewFileOutput(t *testing.T) {
	out := NewFileOutput(sampleFile(), DensityMedium)
	if out.File != "main.cpp" || out.Count != 4 || len(out.Entities) != 4 {
		t.Fatalf("unexpected file output %+v", out)
	}

	macro := out.Entities[0]
	if macro.Kind != "macro" || macro.Name != "N" || macro.Replacement != "4" || macro.Location != "1:9" {
		t.Errorf("unexpected macro %+v", macro)
	}
	if macro.Offset != nil {
		t.Error("offset should only be set in dense mode")
	}

	inc := out.Entities[1]
	if inc.Kind != "include" || inc.Include != "system" {
		t.Errorf("unexpected include %+v", inc)
	}

	fn := out.Entities[2]
	if fn.Signature != "int f(int x = N)" {
		t.Errorf("unexpected signature %q", fn.Signature)
	}
	if fn.Scope != "ns" || fn.Comment != "/// Does f." {
		t.Errorf("unexpected function %+v", fn)
	}
	if len(fn.Parameters) != 1 || fn.Parameters[0].Default != "N" || fn.Parameters[0].Type.Display != "int" {
		t.Errorf("unexpected parameters %+v", fn.Parameters)
	}
	if fn.Noexcept != "" || fn.Definition != "" {
		t.Errorf("defaults should be omitted, got %+v", fn)
	}

	draw := out.Entities[3]
	if draw.Virtual != "pure" || draw.CV != "const" || draw.Definition != "pure" {
		t.Errorf("unexpected member function %+v", draw)
	}
	if draw.Signature != "virtual void draw() const = 0" {
		t.Errorf("unexpected signature %q", draw.Signature)
	}
}

func TestSparseFormat(t *testing.T) {
	out := NewFileOutput(sampleFile(), DensitySparse)
	fn := out.Entities[2]
	if fn.Signature == "" {
		t.Error("sparse output keeps the signature")
	}
	if fn.Comment != "" || fn.Parameters != nil || fn.Return != nil {
		t.Errorf("sparse output should drop details, got %+v", fn)
	}
	if out.Entities[0].Replacement != "" {
		t.Error("sparse output should drop macro replacement")
	}
}

func TestDenseFormat(t *testing.T) {
	out := NewFileOutput(sampleFile(), DensityDense)
	fn := out.Entities[2]
	if fn.Offset == nil || *fn.Offset != 40 {
		t.Errorf("expected offset 40, got %v", fn.Offset)
	}
	if fn.Return.Canonical != "int" {
		t.Errorf("expected canonical return type, got %q", fn.Return.Canonical)
	}

	invalid := typeOutput(entity.NewTypeRef(entity.InvalidType, "T"), DensityDense)
	if invalid.Canonical != "<invalid>" || invalid.Display != "T" {
		t.Errorf("unexpected invalid type output %+v", invalid)
	}
}

func TestSignature(t *testing.T) {
	ref := func(s string) entity.TypeRef { return entity.NewTypeRef(entity.NewType(s), s) }

	tests := []struct {
		name string
		f    entity.Function
		m    *entity.MemberFunctionInfo
		want string
	}{
		{
			name: "variadic",
			f: entity.Function{
				FunctionName: "log", Return: ref("int"),
				Parameters: []*entity.Parameter{{ParamName: "fmt", Type: ref("const char*")}},
				Info:       entity.FunctionInfo{Flags: entity.Variadic, Noexcept: "false", Definition: entity.DefinitionNormal},
			},
			want: "int log(const char* fmt, ...)",
		},
		{
			name: "constexpr noexcept expression",
			f: entity.Function{
				FunctionName: "sq", Return: ref("int"),
				Parameters: []*entity.Parameter{{Type: ref("int")}},
				Info:       entity.FunctionInfo{Flags: entity.Constexpr | entity.ExplicitNoexcept, Noexcept: "sizeof(int) > 2", Definition: entity.DefinitionNormal},
			},
			want: "constexpr int sq(int) noexcept(sizeof(int) > 2)",
		},
		{
			name: "rvalue override",
			f: entity.Function{
				FunctionName: "take", Return: ref("std::string"),
				Info: entity.FunctionInfo{Flags: entity.ExplicitNoexcept, Noexcept: "true", Definition: entity.DefinitionNormal},
			},
			m:    &entity.MemberFunctionInfo{Virtual: entity.VirtualOverridden, Ref: entity.RefRValue},
			want: "std::string take() && noexcept override",
		},
		{
			name: "deleted",
			f: entity.Function{
				FunctionName: "operator=", Return: ref("Widget&"),
				Parameters: []*entity.Parameter{{Type: ref("const Widget&")}},
				Info:       entity.FunctionInfo{Noexcept: "false", Definition: entity.DefinitionDeleted},
			},
			m:    &entity.MemberFunctionInfo{},
			want: "Widget& operator=(const Widget&) = delete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Signature(&tt.f, tt.m); got != tt.want {
				t.Errorf("Signature() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestYAMLFormatterFile(t *testing.T) {
	formatter := NewYAMLFormatter()
	text, err := formatter.Format(NewFileOutput(sampleFile(), DensityMedium))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	for _, want := range []string{"file: main.cpp", "count: 4", "kind: macro", "signature: virtual void draw() const = 0"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}

	var decoded FileOutput
	if err := yaml.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("failed to unmarshal YAML: %v", err)
	}
	if len(decoded.Entities) != 4 || decoded.Entities[2].Parameters[0].Name != "x" {
		t.Errorf("unexpected decoded output %+v", decoded)
	}
}

func TestJSONFormatterWithWriter(t *testing.T) {
	run := &RunOutput{
		Files:  []*FileOutput{NewFileOutput(sampleFile(), DensitySparse)},
		Failed: []*FailedUnit{{File: "bad.cpp", Error: "#error broken"}},
	}

	var buf bytes.Buffer
	if err := NewJSONFormatter().FormatToWriter(&buf, run); err != nil {
		t.Fatalf("FormatToWriter failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if _, ok := decoded["files"]; !ok {
		t.Error("expected files key")
	}
	failed, ok := decoded["failed"].([]interface{})
	if !ok || len(failed) != 1 {
		t.Errorf("expected one failed unit, got %v", decoded["failed"])
	}
	if strings.Contains(buf.String(), "\"comment\"") {
		t.Error("sparse output should not contain comments")
	}
}

func TestYAMLJSONConsistency(t *testing.T) {
	out := NewFileOutput(sampleFile(), DensityDense)

	y, err := NewYAMLFormatter().Format(out)
	if err != nil {
		t.Fatal(err)
	}
	j, err := NewJSONFormatter().Format(out)
	if err != nil {
		t.Fatal(err)
	}

	var fromYAML, fromJSON FileOutput
	if err := yaml.Unmarshal([]byte(y), &fromYAML); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(j), &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML.Entities) != len(fromJSON.Entities) {
		t.Fatalf("entity count differs: %d vs %d", len(fromYAML.Entities), len(fromJSON.Entities))
	}
	for i := range fromYAML.Entities {
		if fromYAML.Entities[i].Signature != fromJSON.Entities[i].Signature {
			t.Errorf("entity %d: signature differs", i)
		}
	}
}
