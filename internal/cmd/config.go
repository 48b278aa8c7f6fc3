package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxdoc/cxdoc/internal/config"
	"github.com/cxdoc/cxdoc/internal/output"
)

// loadConfig reads the configuration named by --config, or the one found
// above the working directory, and applies the command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return nil, fmt.Errorf("get working directory: %w", werr)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}

	cfg.Compile.Flags = append(cfg.Compile.Flags, compileFlags...)
	cfg.Document.Directories = append(cfg.Document.Directories, docDirs...)
	if jobs > 0 {
		cfg.Run.Jobs = jobs
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// formatter returns the formatter and density selected by cfg and --density.
func formatter(cfg *config.Config) (output.Formatter, output.Density, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, "", err
	}
	density, err := output.ParseDensity(outputDensity)
	if err != nil {
		return nil, "", err
	}
	f, err := output.GetFormatter(format)
	if err != nil {
		return nil, "", err
	}
	return f, density, nil
}
