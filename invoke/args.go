// Package invoke turns generation configs into protoc command lines and runs
// them.
package invoke

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jhump/grpcgen/config"
	"github.com/jhump/grpcgen/paths"
)

// PluginKind identifies one of the two code generator plugins that protoc
// runs.
type PluginKind int

const (
	// KindMessages is the plugin that generates message types.
	KindMessages PluginKind = iota
	// KindServices is the plugin that generates service clients and servers.
	KindServices
)

func (k PluginKind) String() string {
	switch k {
	case KindMessages:
		return "messages"
	case KindServices:
		return "services"
	default:
		return "PluginKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Name is the plugin's name as protoc knows it: protoc runs the plugin
// executable "protoc-gen-<name>" for the "--<name>_out" flag.
func (k PluginKind) Name() string {
	if k == KindServices {
		return "grpc-swift"
	}
	return "swift"
}

// Extension is the extension of files the plugin generates.
func (k PluginKind) Extension() string {
	if k == KindServices {
		return ".grpc.swift"
	}
	return ".pb.swift"
}

// ExecutableName is the conventional file name of the plugin's executable.
func (k PluginKind) ExecutableName() string {
	return "protoc-gen-" + k.Name()
}

// BuildArgs constructs the protoc arguments that run one plugin over the
// given inputs. The plugin flag is omitted when pluginPath is empty, in which
// case protoc looks for the plugin on its own.
func BuildArgs(kind PluginKind, cfg config.GenerationConfig, inputs, importPaths []string, pluginPath, outputDir string) []string {
	name := kind.Name()
	args := make([]string, 0, 10+len(importPaths)+len(inputs))
	if pluginPath != "" {
		args = append(args, "--plugin="+kind.ExecutableName()+"="+pluginPath)
	}
	args = append(args, "--"+name+"_out="+outputDir)
	for _, p := range importPaths {
		args = append(args, "--proto_path="+p)
	}

	opt := func(key, value string) {
		args = append(args, "--"+name+"_opt="+key+"="+value)
	}
	opt("Visibility", cfg.AccessLevel.PluginOption())
	if kind == KindServices {
		opt("Server", strconv.FormatBool(cfg.Servers))
		opt("Client", strconv.FormatBool(cfg.Clients))
	}
	opt("FileNaming", cfg.FileNaming.String())
	opt("UseAccessLevelOnImports", strconv.FormatBool(cfg.AccessLevelOnImports))
	if cfg.ModuleMappingsPath != "" {
		opt("ProtoPathModuleMappings", cfg.ModuleMappingsPath)
	}
	if kind == KindServices {
		for _, imp := range cfg.ExtraImports {
			opt("ExtraModuleImports", imp)
		}
	}

	return append(args, inputs...)
}

// Invocation is one run of protoc.
type Invocation struct {
	Kind       PluginKind
	Executable string
	Args       []string
	// Directory that generated files are written to.
	OutputDir string
	// Paths of the files protoc is expected to generate.
	Outputs []string
}

// String renders the invocation as a shell command line.
func (inv Invocation) String() string {
	parts := make([]string, 0, 1+len(inv.Args))
	for _, s := range append([]string{inv.Executable}, inv.Args...) {
		if s == "" || strings.ContainsAny(s, " \t\n\"'\\$") {
			s = strconv.Quote(s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// PlanOptions hold the parts of a protoc run that do not come from a
// GenerationConfig.
type PlanOptions struct {
	ProtocPath string
	// Plugin executables, by kind. A missing entry leaves discovery of the
	// plugin to protoc.
	PluginPaths map[PluginKind]string
	// Directory whose path prefix is dropped from inputs when deriving
	// output paths.
	BaseDir string
	// Import paths used when the config has none.
	DefaultImportPaths []string
}

// Plan returns the protoc invocations that generate code for inputs: one for
// messages, if enabled, and one for services, if servers or clients are
// enabled.
func Plan(cfg config.GenerationConfig, inputs []string, opts PlanOptions) []Invocation {
	importPaths := cfg.ImportPaths
	if len(importPaths) == 0 {
		importPaths = opts.DefaultImportPaths
	}
	outputDir := cfg.OutputPath
	if outputDir == "" {
		outputDir = "."
	}

	var kinds []PluginKind
	if cfg.Messages {
		kinds = append(kinds, KindMessages)
	}
	if cfg.Servers || cfg.Clients {
		kinds = append(kinds, KindServices)
	}

	invs := make([]Invocation, 0, len(kinds))
	for _, kind := range kinds {
		outputs := make([]string, len(inputs))
		for i, input := range inputs {
			outputs[i] = paths.DeriveOutputPath(input, cfg.FileNaming, opts.BaseDir, outputDir, kind.Extension())
		}
		invs = append(invs, Invocation{
			Kind:       kind,
			Executable: opts.ProtocPath,
			Args:       BuildArgs(kind, cfg, relativeInputs(inputs, importPaths), importPaths, opts.PluginPaths[kind], outputDir),
			OutputDir:  outputDir,
			Outputs:    outputs,
		})
	}
	return invs
}

// relativeInputs makes inputs relative to the first import path that
// contains them, since protoc requires every input to be reachable through
// an import path.
func relativeInputs(inputs, importPaths []string) []string {
	rel := make([]string, len(inputs))
	for i, input := range inputs {
		rel[i] = input
		if !filepath.IsAbs(input) {
			continue
		}
		for _, p := range importPaths {
			if r, err := filepath.Rel(p, input); err == nil && !strings.HasPrefix(r, "..") {
				rel[i] = filepath.ToSlash(r)
				break
			}
		}
	}
	return rel
}
