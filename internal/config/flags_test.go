package config

import (
	"reflect"
	"testing"
)

func TestParseCompileFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
		want  []Action
	}{
		{
			name:  "separate form",
			flags: []string{"-D", "FOO=1", "-U", "BAR", "-I", "include"},
			want: []Action{
				{Op: Define, Arg: "FOO=1"},
				{Op: Undefine, Arg: "BAR"},
				{Op: Include, Arg: "include"},
			},
		},
		{
			name:  "concatenated form",
			flags: []string{"-DNDEBUG", "-Iinclude", "-UDEBUG"},
			want: []Action{
				{Op: Define, Arg: "NDEBUG"},
				{Op: Include, Arg: "include"},
				{Op: Undefine, Arg: "DEBUG"},
			},
		},
		{
			name:  "unknown flags are ignored",
			flags: []string{"-Wall", "-std=c++17", "-DX", "main.cpp"},
			want:  []Action{{Op: Define, Arg: "X"}},
		},
		{
			name:  "trailing flag without argument",
			flags: []string{"-DX", "-I"},
			want:  []Action{{Op: Define, Arg: "X"}},
		},
		{
			name:  "order is kept",
			flags: []string{"-DA", "-UA", "-DA=2"},
			want: []Action{
				{Op: Define, Arg: "A"},
				{Op: Undefine, Arg: "A"},
				{Op: Define, Arg: "A=2"},
			},
		},
		{
			name:  "empty",
			flags: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCompileFlags(tt.flags)
			if !reflect.DeepEqual(got.Actions, tt.want) {
				t.Errorf("ParseCompileFlags(%v) = %v, want %v", tt.flags, got.Actions, tt.want)
			}
		})
	}
}

func TestConfigCompileConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compile.Flags = []string{"-DNDEBUG"}
	cfg.Compile.SysIncludePaths = []string{"/usr/include"}

	cc := cfg.CompileConfig()
	if len(cc.Actions) != 1 || cc.Actions[0].Op != Define {
		t.Errorf("unexpected actions %v", cc.Actions)
	}
	if len(cc.SysIncludePaths) != 1 || cc.SysIncludePaths[0] != "/usr/include" {
		t.Errorf("unexpected sys include paths %v", cc.SysIncludePaths)
	}

	if Define.String() != "-D" || Include.String() != "-I" || Undefine.String() != "-U" {
		t.Error("unexpected op spelling")
	}
}
