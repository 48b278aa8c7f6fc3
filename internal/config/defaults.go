package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Compile: CompileSection{
			Flags:           []string{},
			SysIncludePaths: []string{},
		},
		Document: DocumentConfig{
			Directories: []string{"include"},
		},
		Run: RunConfig{
			Jobs: 4,
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Compile:  mergeCompileConfig(loaded.Compile, defaults.Compile),
		Document: mergeDocumentConfig(loaded.Document, defaults.Document),
		Run:      mergeRunConfig(loaded.Run, defaults.Run),
		Output:   mergeOutputConfig(loaded.Output, defaults.Output),
	}
}

func mergeCompileConfig(loaded, defaults CompileSection) CompileSection {
	result := CompileSection{}

	if len(loaded.Flags) > 0 {
		result.Flags = loaded.Flags
	} else {
		result.Flags = defaults.Flags
	}

	if len(loaded.SysIncludePaths) > 0 {
		result.SysIncludePaths = loaded.SysIncludePaths
	} else {
		result.SysIncludePaths = defaults.SysIncludePaths
	}

	return result
}

func mergeDocumentConfig(loaded, defaults DocumentConfig) DocumentConfig {
	result := DocumentConfig{}

	if len(loaded.Directories) > 0 {
		result.Directories = loaded.Directories
	} else {
		result.Directories = defaults.Directories
	}

	// YAML unmarshals a missing bool as false, which is also the default.
	result.Recursive = loaded.Recursive

	return result
}

func mergeRunConfig(loaded, defaults RunConfig) RunConfig {
	result := RunConfig{}

	if loaded.Jobs != 0 {
		result.Jobs = loaded.Jobs
	} else {
		result.Jobs = defaults.Jobs
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	return result
}

// ValidFormats lists the valid values for output format
var ValidFormats = []string{"yaml", "json"}

// IsValidFormat checks if the given format value is valid
func IsValidFormat(format string) bool {
	for _, valid := range ValidFormats {
		if format == valid {
			return true
		}
	}
	return false
}
