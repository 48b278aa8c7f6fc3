package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the cxdoc configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cxdoc configuration directory
const ConfigDirName = ".cxdoc"

// Config holds all cxdoc configuration
type Config struct {
	Compile  CompileSection `yaml:"compile"`
	Document DocumentConfig `yaml:"document"`
	Run      RunConfig      `yaml:"run"`
	Output   OutputConfig   `yaml:"output"`
}

// CompileSection holds the compiler-style flags used to preprocess units
type CompileSection struct {
	// Flags is the ordered -D/-U/-I list, separate or concatenated form.
	Flags           []string `yaml:"flags"`
	SysIncludePaths []string `yaml:"sys_include_paths"`
}

// DocumentConfig selects what gets documented
type DocumentConfig struct {
	// Directories are the documentation-relevant include directories.
	// Includes resolved into them are recorded instead of expanded.
	Directories []string `yaml:"directories"`
	// Recursive also treats subdirectories of Directories as relevant.
	Recursive bool `yaml:"recursive"`
}

// RunConfig holds configuration for processing several units
type RunConfig struct {
	Jobs int `yaml:"jobs"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format string `yaml:"format"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .cxdoc/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .cxdoc directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .cxdoc directory if it doesn't exist.
// Returns the path to the .cxdoc directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if !IsValidFormat(cfg.Output.Format) {
		return fmt.Errorf("%w: format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	if cfg.Run.Jobs <= 0 {
		return fmt.Errorf("%w: jobs must be positive, got %d",
			ErrInvalidConfig, cfg.Run.Jobs)
	}

	for _, dir := range cfg.Document.Directories {
		if dir == "" {
			return fmt.Errorf("%w: document directories must not be empty", ErrInvalidConfig)
		}
	}

	return nil
}

// SaveDefault writes the default configuration to .cxdoc/config.yaml in workDir.
// Creates the .cxdoc directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# cxdoc configuration\n# compile.flags accepts -D, -U and -I in separate or concatenated form\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
