// Package cmd contains all CLI commands for cxdoc.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is the current version of cxdoc
	Version = "0.1.0"

	// Global flags
	verbose       bool
	configPath    string
	forAgents     bool
	outputFormat  string
	outputDensity string
	compileFlags  []string
	docDirs       []string
	jobs          int

	logger *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cxdoc",
	Short: "Extract C++ declarations and their documentation comments",
	Long: `cxdoc preprocesses C++ translation units and extracts a source-ordered log
of the documented declarations they contain.

Macro definitions and includes of documented headers are recorded as they are
written, everything else is expanded so the syntax parser sees real C++. The
extractor then records free functions and member functions with their return
types, parameters, default values, qualifiers and attached comments.

Output Format:
  All commands output YAML format by default with adjustable detail levels.
  Use --format flag to switch to JSON.
  Use --density flag to control detail level (sparse|medium|dense).

Compile Flags:
  -D name[=value]   Define a macro before the unit is read
  -U name           Remove a macro
  -I dir            Add an include directory
  Flags are appended, in order, to compile.flags of .cxdoc/config.yaml.

Examples:
  cxdoc init                              # Write .cxdoc/config.yaml
  cxdoc extract src/widget.cpp            # Print the entities of one unit
  cxdoc extract -DNDEBUG -I include src/  # Every unit below src/
  cxdoc preprocess src/widget.cpp         # Show what the parser sees

See 'cxdoc <command> --help' for command-specific options.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .cxdoc/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "Output format (yaml|json)")
	rootCmd.PersistentFlags().StringVar(&outputDensity, "density", "medium", "Output density (sparse|medium|dense)")
	rootCmd.PersistentFlags().VarP(newCompileFlag("-D", &compileFlags), "define", "D", "Define a macro (name[=value])")
	rootCmd.PersistentFlags().VarP(newCompileFlag("-U", &compileFlags), "undefine", "U", "Undefine a macro")
	rootCmd.PersistentFlags().VarP(newCompileFlag("-I", &compileFlags), "include-dir", "I", "Add an include directory")
	rootCmd.PersistentFlags().StringArrayVar(&docDirs, "doc-dir", nil, "Add a documented include directory")
	rootCmd.PersistentFlags().IntVar(&jobs, "jobs", 0, "Units processed in parallel (default: run.jobs)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// newLogger writes to the error stream of cmd so that output stays clean.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(cmd.ErrOrStderr())
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// compileFlag is a repeatable -D/-U/-I flag. All three append to the same
// list so that their relative order survives.
type compileFlag struct {
	op   string
	list *[]string
}

func newCompileFlag(op string, list *[]string) *compileFlag {
	return &compileFlag{op: op, list: list}
}

func (f *compileFlag) String() string {
	var own []string
	if f.list != nil {
		for _, v := range *f.list {
			if strings.HasPrefix(v, f.op) {
				own = append(own, strings.TrimPrefix(v, f.op))
			}
		}
	}
	return "[" + strings.Join(own, ",") + "]"
}

func (f *compileFlag) Set(v string) error {
	if v == "" {
		return fmt.Errorf("%s requires an argument", f.op)
	}
	*f.list = append(*f.list, f.op+v)
	return nil
}

func (f *compileFlag) Type() string { return "stringArray" }

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp outputs machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	output := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		lines := strings.Split(cmd.Example, "\n")
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}

	return info
}
