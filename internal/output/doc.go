// Package output renders extracted entity logs as YAML or JSON.
//
// # Overview
//
// The output is meant for inspecting what the extractor saw in a unit and
// for feeding documentation renderers that do not link against cxdoc. Every
// entity keeps its source order, so a reader can follow the log the same
// way the preprocessor and the extractor wrote it.
//
// # Output Types
//
//   - FileOutput: the entities of one translation unit
//   - RunOutput: the files of several units plus the units that failed
//   - EntityOutput: one macro, include, function or member function
//
// # Formats
//
//   - YAML (default): block style, human-readable
//   - JSON: same structure as YAML
//
// # Density Modes
//
// Density controls how much of each entity is printed:
//
//   - Sparse: kind, name, location and the signature of functions
//     Example: {kind: function, name: add, location: "3:1", signature: "int add(int a, int b = 2)"}
//
//   - Medium (default): adds comments, parameters and qualifiers
//
//   - Dense: adds byte offsets and the canonical spelling of every type
//
// # Example Usage
//
//	out := output.NewFileOutput(file, output.DensityMedium)
//	f, _ := output.GetFormatter(output.FormatYAML)
//	_ = f.FormatToWriter(os.Stdout, out)
package output
