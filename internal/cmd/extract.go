package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cxdoc/cxdoc/internal/exclude"
	"github.com/cxdoc/cxdoc/internal/output"
	"github.com/cxdoc/cxdoc/internal/pipeline"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file|dir>...",
	Short: "Print the documented entities of translation units",
	Long: `Preprocess and parse each translation unit and print its entity log:
macro definitions, includes of documented headers, free functions and
member functions, in source order.

Directory arguments are searched for C++ sources and headers. Build trees
(CMakeCache.txt, build.ninja) and installed packages are skipped.

A single file argument prints one file; otherwise the output lists every
file and the units that failed. A failing unit does not stop the others.`,
	Example: `  cxdoc extract src/widget.cpp
  cxdoc extract --format json --density dense include/
  cxdoc extract -DWIDGET_API= --doc-dir include src/ --exclude legacy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

var extractExcludes []string

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringSliceVar(&extractExcludes, "exclude", nil, "Directories to skip, relative to each directory argument")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, density, err := formatter(cfg)
	if err != nil {
		return err
	}

	units, single, err := collectUnits(args)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"units": len(units),
		"jobs":  cfg.Run.Jobs,
	}).Debug("extracting")

	outcomes := pipeline.New(cfg, nil, logger).ProcessAll(cmd.Context(), units)

	if single {
		o := outcomes[0]
		if o.Err != nil {
			return o.Err
		}
		return f.FormatToWriter(cmd.OutOrStdout(), output.NewFileOutput(o.File, density))
	}

	run := &output.RunOutput{}
	for _, o := range outcomes {
		if o.Err != nil {
			run.Failed = append(run.Failed, &output.FailedUnit{File: o.Unit.Path, Error: o.Err.Error()})
			continue
		}
		run.Files = append(run.Files, output.NewFileOutput(o.File, density))
	}
	if err := f.FormatToWriter(cmd.OutOrStdout(), run); err != nil {
		return err
	}
	if len(run.Failed) > 0 {
		return fmt.Errorf("%d of %d units failed", len(run.Failed), len(units))
	}
	return nil
}

// collectUnits expands directory arguments. single is set when the only
// argument is a file.
func collectUnits(args []string) ([]pipeline.Unit, bool, error) {
	var units []pipeline.Unit
	single := len(args) == 1
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, false, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			units = append(units, pipeline.Unit{Path: arg})
			continue
		}

		single = false
		files, err := exclude.SourceFiles(arg, extractExcludes)
		if err != nil {
			return nil, false, fmt.Errorf("walking %s: %w", arg, err)
		}
		for _, file := range files {
			units = append(units, pipeline.Unit{Path: file})
		}
	}
	return units, single, nil
}
