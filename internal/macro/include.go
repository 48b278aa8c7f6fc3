package macro

import (
	"os"
	"path/filepath"
)

// Loader gives the engine access to header files.
type Loader interface {
	// Exists reports whether path names a regular file.
	Exists(path string) bool
	// ReadFile returns the contents of path.
	ReadFile(path string) ([]byte, error)
}

// OSLoader reads files from the local file system.
type OSLoader struct{}

// Exists implements Loader.
func (OSLoader) Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// ReadFile implements Loader.
func (OSLoader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MapLoader serves files from memory, keyed by cleaned path.
type MapLoader map[string]string

// Exists implements Loader.
func (m MapLoader) Exists(path string) bool {
	_, ok := m[filepath.Clean(path)]
	return ok
}

// ReadFile implements Loader.
func (m MapLoader) ReadFile(path string) ([]byte, error) {
	s, ok := m[filepath.Clean(path)]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return []byte(s), nil
}

// searchPath is the ordered list of include directories: -I directories
// first, then system directories.
type searchPath struct {
	user   []string
	system []string
}

func (s *searchPath) dirs() []string {
	out := make([]string, 0, len(s.user)+len(s.system))
	out = append(out, s.user...)
	return append(out, s.system...)
}

// find resolves a header name. Quoted includes try the directory of the
// including file first. #include_next resumes after the directory the
// including file was found in and never looks next to the includer; when the
// includer was not found through the search path it starts from the first
// directory, as GCC does, so a header that is also reachable through -I can
// be read once more. It returns the resolved path and the index of the
// search directory, -1 when found next to the includer.
func (s *searchPath) find(l Loader, name string, system, next bool, from *source) (string, int, bool) {
	if filepath.IsAbs(name) {
		if l.Exists(name) {
			return filepath.Clean(name), -1, true
		}
		return "", 0, false
	}

	start := 0
	if next {
		if from != nil && from.dirIndex >= 0 {
			start = from.dirIndex + 1
		}
	} else if !system && from != nil {
		cand := filepath.Join(filepath.Dir(from.path), name)
		if l.Exists(cand) {
			return filepath.Clean(cand), -1, true
		}
	}

	dirs := s.dirs()
	for i := start; i < len(dirs); i++ {
		cand := filepath.Join(dirs[i], name)
		if l.Exists(cand) {
			return filepath.Clean(cand), i, true
		}
	}
	return "", 0, false
}
