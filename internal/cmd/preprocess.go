package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/output"
	"github.com/cxdoc/cxdoc/internal/pipeline"
	"github.com/cxdoc/cxdoc/internal/preprocess"
)

// preprocessCmd represents the preprocess command
var preprocessCmd = &cobra.Command{
	Use:   "preprocess <file>",
	Short: "Print a translation unit as the syntax parser sees it",
	Long: `Run the selective preprocessor over one translation unit and print the
expanded text. Includes of documented headers are left out, every other
include is expanded and its directive is kept in place.

With --entities the recorded directive log is printed instead.`,
	Example: `  cxdoc preprocess src/widget.cpp
  cxdoc preprocess --entities -DNDEBUG src/widget.cpp`,
	Args: cobra.ExactArgs(1),
	RunE: runPreprocess,
}

var preprocessEntities bool

func init() {
	rootCmd.AddCommand(preprocessCmd)
	preprocessCmd.Flags().BoolVar(&preprocessEntities, "entities", false, "Print the macro and include entities instead of the text")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	file := entity.NewFile(filepath.Clean(path))
	text, err := preprocess.New(pipeline.Relevant(cfg.Document), nil, logger).Preprocess(cfg.CompileConfig(), path, src, file)
	if err != nil {
		return err
	}
	file.Seal()

	if !preprocessEntities {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	f, density, err := formatter(cfg)
	if err != nil {
		return err
	}
	return f.FormatToWriter(cmd.OutOrStdout(), output.NewFileOutput(file, density))
}
