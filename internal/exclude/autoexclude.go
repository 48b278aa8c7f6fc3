// Package exclude detects build and dependency directories of C++ projects
// and lists the translation units below a directory.
package exclude

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cxdoc/cxdoc/internal/parser"
)

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude (relative to project root)
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	".cxdoc":       true,
	"node_modules": true,
}

// DetectAutoExcludes scans the project root for build trees and installed
// dependencies. Only marker files are used for detection:
//   - CMakeCache.txt marks a CMake build directory
//   - build.ninja marks a Ninja or Meson build directory
//   - vcpkg.json with a vcpkg_installed/ sibling marks vcpkg packages
//   - conanfile.txt or conanfile.py with a sibling build/ marks Conan output
func DetectAutoExcludes(projectRoot string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	_ = filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == projectRoot {
			return nil
		}

		relPath, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if skippedDirs[d.Name()] || excluded(result.Directories, relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		relDirPath, err := filepath.Rel(projectRoot, filepath.Dir(path))
		if err != nil {
			return nil
		}

		switch d.Name() {
		case "CMakeCache.txt":
			result.add(relDirPath, "CMake build directory (CMakeCache.txt detected)")
		case "build.ninja":
			result.add(relDirPath, "Ninja build directory (build.ninja detected)")
		case "vcpkg.json":
			dir := filepath.Join(relDirPath, "vcpkg_installed")
			if dirExists(filepath.Join(projectRoot, dir)) {
				result.add(dir, "vcpkg packages (vcpkg.json detected)")
			}
		case "conanfile.txt", "conanfile.py":
			dir := filepath.Join(relDirPath, "build")
			if dirExists(filepath.Join(projectRoot, dir)) {
				result.add(dir, "Conan build output ("+d.Name()+" detected)")
			}
		}
		return nil
	})

	return result
}

func (r *AutoExcludeResult) add(dir, reason string) {
	dir = filepath.Clean(dir)
	if dir == "." || contains(r.Directories, dir) {
		return
	}
	r.Directories = append(r.Directories, dir)
	r.Reasons[dir] = reason
}

// excluded reports whether relPath is one of dirs or lies below one.
func excluded(dirs []string, relPath string) bool {
	for _, dir := range dirs {
		if relPath == dir || strings.HasPrefix(relPath, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// SourceFiles lists the C++ source and header files below root in lexical
// order. Directories in excludes, relative to root, are skipped together
// with the directories DetectAutoExcludes finds.
func SourceFiles(root string, excludes []string) ([]string, error) {
	dirs := append([]string(nil), DetectAutoExcludes(root).Directories...)
	for _, e := range excludes {
		dirs = append(dirs, filepath.Clean(e))
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skippedDirs[d.Name()] || excluded(dirs, relPath)) {
				return filepath.SkipDir
			}
			return nil
		}
		if parser.IsSourceFile(path) && !excluded(dirs, relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// contains checks if a string is in a slice.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
