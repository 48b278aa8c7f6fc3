package exclude

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectAutoExcludes_Empty(t *testing.T) {
	tmpDir := t.TempDir()

	result := DetectAutoExcludes(tmpDir)

	if len(result.Directories) != 0 {
		t.Errorf("expected 0 directories, got %d: %v", len(result.Directories), result.Directories)
	}
}

func TestDetectAutoExcludes_CMake(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "build", "CMakeCache.txt"), "CMAKE_BUILD_TYPE:STRING=Debug\n")
	writeFile(t, filepath.Join(tmpDir, "build", "gen", "config.h"), "#define X 1\n")

	result := DetectAutoExcludes(tmpDir)

	if !reflect.DeepEqual(result.Directories, []string{"build"}) {
		t.Errorf("expected [build], got %v", result.Directories)
	}
	if result.Reasons["build"] == "" {
		t.Error("expected reason for build directory")
	}
}

func TestDetectAutoExcludes_Ninja(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "out", "release", "build.ninja"), "rule cc\n")

	result := DetectAutoExcludes(tmpDir)

	want := filepath.Join("out", "release")
	if !contains(result.Directories, want) {
		t.Errorf("expected %s in directories, got %v", want, result.Directories)
	}
}

func TestDetectAutoExcludes_Vcpkg(t *testing.T) {
	t.Run("with installed packages", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "vcpkg.json"), "{}")
		if err := os.Mkdir(filepath.Join(tmpDir, "vcpkg_installed"), 0755); err != nil {
			t.Fatal(err)
		}

		result := DetectAutoExcludes(tmpDir)
		if !contains(result.Directories, "vcpkg_installed") {
			t.Errorf("expected vcpkg_installed, got %v", result.Directories)
		}
	})

	t.Run("without installed packages", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "vcpkg.json"), "{}")

		result := DetectAutoExcludes(tmpDir)
		if len(result.Directories) != 0 {
			t.Errorf("expected no directories, got %v", result.Directories)
		}
	})
}

func TestDetectAutoExcludes_Conan(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "lib", "conanfile.py"), "")
	if err := os.MkdirAll(filepath.Join(tmpDir, "lib", "build"), 0755); err != nil {
		t.Fatal(err)
	}

	result := DetectAutoExcludes(tmpDir)

	want := filepath.Join("lib", "build")
	if !contains(result.Directories, want) {
		t.Errorf("expected %s, got %v", want, result.Directories)
	}
}

func TestDetectAutoExcludes_RootBuildTree(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "CMakeCache.txt"), "")

	result := DetectAutoExcludes(tmpDir)

	if len(result.Directories) != 0 {
		t.Errorf("the project root itself is never excluded, got %v", result.Directories)
	}
}

func TestSourceFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "src", "a.cpp"), "")
	writeFile(t, filepath.Join(tmpDir, "include", "a.hpp"), "")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "")
	writeFile(t, filepath.Join(tmpDir, "build", "CMakeCache.txt"), "")
	writeFile(t, filepath.Join(tmpDir, "build", "gen.cpp"), "")
	writeFile(t, filepath.Join(tmpDir, "third_party", "x.h"), "")
	writeFile(t, filepath.Join(tmpDir, ".git", "hook.c++"), "")

	files, err := SourceFiles(tmpDir, []string{"third_party"})
	if err != nil {
		t.Fatalf("SourceFiles failed: %v", err)
	}

	want := []string{
		filepath.Join(tmpDir, "include", "a.hpp"),
		filepath.Join(tmpDir, "src", "a.cpp"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("expected %v, got %v", want, files)
	}
}

func TestSourceFiles_MissingRoot(t *testing.T) {
	if _, err := SourceFiles(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestContains(t *testing.T) {
	slice := []string{"a", "b", "c"}

	if !contains(slice, "a") {
		t.Error("expected contains to return true for 'a'")
	}
	if contains(slice, "d") {
		t.Error("expected contains to return false for 'd'")
	}
	if contains(nil, "a") {
		t.Error("expected contains to return false for nil slice")
	}
}
