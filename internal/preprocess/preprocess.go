// Package preprocess is the selective preprocessor. It runs the macro engine
// over a translation unit and records the directives the documentation cares
// about into an entity.File: macro definitions and undefinitions in the main
// file and includes of documentation-relevant headers.
package preprocess

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cxdoc/cxdoc/internal/config"
	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/macro"
)

// DirectoryPredicate reports whether headers in dir are documented.
type DirectoryPredicate func(dir string) bool

// Directories matches exactly the given directories.
func Directories(dirs ...string) DirectoryPredicate {
	set := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		set[normalize(d)] = true
	}
	return func(dir string) bool {
		return set[normalize(dir)]
	}
}

// DirectoryTrees matches the given directories and everything below them.
func DirectoryTrees(dirs ...string) DirectoryPredicate {
	roots := make([]string, 0, len(dirs))
	for _, d := range dirs {
		roots = append(roots, normalize(d))
	}
	return func(dir string) bool {
		dir = normalize(dir)
		for _, root := range roots {
			if dir == root || strings.HasPrefix(dir, root+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}
}

func normalize(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// Preprocessor holds the settings shared by every unit.
type Preprocessor struct {
	// Relevant selects the documented include directories. Nil matches none.
	Relevant DirectoryPredicate
	// Loader reads headers. Nil reads from the file system.
	Loader macro.Loader
	Logger *logrus.Logger
}

// New creates a Preprocessor.
func New(relevant DirectoryPredicate, loader macro.Loader, logger *logrus.Logger) *Preprocessor {
	return &Preprocessor{Relevant: relevant, Loader: loader, Logger: logger}
}

// Preprocess expands source, the contents of path, under cfg and records
// directive entities into file. It returns the expanded text.
func (p *Preprocessor) Preprocess(cfg config.CompileConfig, path string, source []byte, file *entity.File) (string, error) {
	res, err := p.Run(cfg, path, source, file)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Run is Preprocess but also returns the source map of the output.
func (p *Preprocessor) Run(cfg config.CompileConfig, path string, source []byte, file *entity.File) (*macro.Result, error) {
	log := p.logger().WithField("unit", path)
	pol := &policy{relevant: p.Relevant, file: file, log: log}

	eng := macro.New(macro.Options{Loader: p.Loader, Hooks: pol.hooks()})
	applyCompileConfig(eng, cfg, log)

	res, err := eng.Preprocess(path, source)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"entities":   file.Len(),
		"suppressed": pol.suppressed,
	}).Debug("preprocessed")
	return res, nil
}

func (p *Preprocessor) logger() *logrus.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// applyCompileConfig applies the flags in order, then the system include
// directories. A definition the engine rejects is skipped.
func applyCompileConfig(eng *macro.Engine, cfg config.CompileConfig, log *logrus.Entry) {
	for _, a := range cfg.Actions {
		switch a.Op {
		case config.Define:
			if err := eng.Define(a.Arg); err != nil {
				log.WithError(err).Warn("ignoring compile flag")
			}
		case config.Undefine:
			eng.Undefine(a.Arg)
		case config.Include:
			eng.AddIncludePath(a.Arg)
		}
	}
	for _, dir := range cfg.SysIncludePaths {
		eng.AddSysIncludePath(dir)
	}
}
