// Package pipeline runs translation units through the selective
// preprocessor, the C++ parser and the entity extractor.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cxdoc/cxdoc/internal/config"
	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/extract"
	"github.com/cxdoc/cxdoc/internal/macro"
	"github.com/cxdoc/cxdoc/internal/parser"
	"github.com/cxdoc/cxdoc/internal/preprocess"
)

// Unit is one translation unit to document.
type Unit struct {
	Path string
	// Source is the text of the main file. Nil reads Path through the loader.
	Source []byte
}

// Outcome is the result of one unit of ProcessAll.
type Outcome struct {
	Unit Unit
	File *entity.File
	Err  error
}

// Pipeline holds the settings shared by all units.
type Pipeline struct {
	Config *config.Config
	// Loader reads main files and headers. Nil reads from the file system.
	Loader macro.Loader
	Logger *logrus.Logger
}

// New creates a Pipeline.
func New(cfg *config.Config, loader macro.Loader, logger *logrus.Logger) *Pipeline {
	return &Pipeline{Config: cfg, Loader: loader, Logger: logger}
}

// Process documents one unit. The returned File is sealed.
func (p *Pipeline) Process(ctx context.Context, unit Unit) (*entity.File, error) {
	log := p.logger().WithField("unit", unit.Path)

	src, err := p.source(unit)
	if err != nil {
		return nil, err
	}

	file := entity.NewFile(unit.Path)
	pre := preprocess.New(Relevant(p.config().Document), p.Loader, p.logger())
	res, err := pre.Run(p.config().CompileConfig(), unit.Path, src, file)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", unit.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ps, err := parser.NewParser()
	if err != nil {
		return nil, err
	}
	defer ps.Close()

	parsed, err := ps.ParseNamed(ctx, unit.Path, []byte(res.Text))
	if err != nil {
		return nil, err
	}
	defer parsed.Close()
	if errs := parsed.SyntaxErrors(res.Map); len(errs) > 0 {
		log.WithField("count", len(errs)).WithError(errs[0]).Debug("syntax errors in preprocessed unit")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	directives := file.Len()
	if err := extract.Extract(parser.NewCursor(parsed, res.Map), file, unit.Path); err != nil {
		return nil, fmt.Errorf("extract %s: %w", unit.Path, err)
	}
	file.Seal()

	log.WithFields(logrus.Fields{
		"directives": directives,
		"functions":  len(file.Functions()),
	}).Debug("extracted")
	return file, nil
}

// ProcessAll documents units with at most Run.Jobs units in flight. A unit
// that fails is logged and reported in its Outcome; the others continue.
// Outcomes are in the order of units.
func (p *Pipeline) ProcessAll(ctx context.Context, units []Unit) []Outcome {
	out := make([]Outcome, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs())
	for i, u := range units {
		g.Go(func() error {
			file, err := p.Process(gctx, u)
			out[i] = Outcome{Unit: u, File: file, Err: err}
			if err != nil {
				p.logger().WithError(err).WithField("unit", u.Path).Error("skipping unit")
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Pipeline) source(unit Unit) ([]byte, error) {
	if unit.Source != nil {
		return unit.Source, nil
	}
	var (
		src []byte
		err error
	)
	if p.Loader != nil {
		src, err = p.Loader.ReadFile(unit.Path)
	} else {
		src, err = os.ReadFile(unit.Path)
	}
	if err != nil {
		return nil, &parser.FileReadError{Path: unit.Path, Err: err}
	}
	return src, nil
}

// Relevant returns the predicate selecting the documented include
// directories of doc.
func Relevant(doc config.DocumentConfig) preprocess.DirectoryPredicate {
	if doc.Recursive {
		return preprocess.DirectoryTrees(doc.Directories...)
	}
	return preprocess.Directories(doc.Directories...)
}

func (p *Pipeline) jobs() int {
	if n := p.config().Run.Jobs; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (p *Pipeline) config() *config.Config {
	if p.Config != nil {
		return p.Config
	}
	return config.DefaultConfig()
}

func (p *Pipeline) logger() *logrus.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
