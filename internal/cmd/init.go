// Package cmd implements the init command for cxdoc CLI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cxdoc/cxdoc/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .cxdoc directory and configuration",
	Long: `Initialize the .cxdoc directory and config.yaml in the current directory.

The configuration holds the compile flags used to preprocess units, the
documented include directories and output defaults.

Examples:
  cxdoc init          # Initialize in current directory
  cxdoc init --force  # Rewrite config.yaml with the defaults`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if .cxdoc already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfgDir := filepath.Join(cwd, config.ConfigDirName)
	cfgPath := filepath.Join(cfgDir, config.ConfigFileName)

	_, err = os.Stat(cfgPath)
	if err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, cfgPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(cfgPath); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	written, err := config.SaveDefault(cwd)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	relPath, _ := filepath.Rel(cwd, written)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized cxdoc config at %s\n", relPath)
	logger.WithField("path", written).Debug("wrote default config")
	return nil
}
