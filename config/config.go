// Package config holds the generation options for a protoc run and the logic
// for loading them from config files and finding the config file that applies
// to a given schema file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// FileBaseName is the base name (sans extension) of config files that are
// discovered in a source tree.
const FileBaseName = "grpc-proto-generator-config"

// File extensions recognized for config files.
var fileExtensions = []string{".json", ".yaml", ".yml"}

// GenerationConfig is the merged set of options for generating code for a
// set of schema files.
type GenerationConfig struct {
	// Visibility of generated declarations.
	AccessLevel AccessLevel `json:"accessLevel"`
	// Whether server code is generated.
	Servers bool `json:"servers"`
	// Whether client code is generated.
	Clients bool `json:"clients"`
	// Whether message code is generated.
	Messages bool `json:"messages"`
	// How output file paths are derived from input file paths.
	FileNaming FileNaming `json:"fileNaming"`
	// Whether imports in generated code carry an explicit access level.
	AccessLevelOnImports bool `json:"accessLevelOnImports"`
	// Directories searched for imported schema files, in order.
	ImportPaths []string `json:"importPaths,omitempty"`
	// Path to the protoc executable. Empty means it must be discovered.
	ProtocPath string `json:"protocPath,omitempty"`
	// Root directory for generated files.
	OutputPath string `json:"outputPath,omitempty"`
	// Path to a document that maps schema files to the modules their
	// generated code lives in.
	ModuleMappingsPath string `json:"moduleMappingsPath,omitempty"`
	// Modules imported by all generated service code.
	ExtraImports []string `json:"extraImports,omitempty"`
}

// Default returns the configuration used when no option overrides a value.
func Default() GenerationConfig {
	return GenerationConfig{
		AccessLevel: AccessLevelInternal,
		Servers:     true,
		Clients:     true,
		Messages:    true,
		FileNaming:  FileNamingFullPath,
	}
}

// configFile is the on-disk shape of a config file. Every group and every
// field is optional.
type configFile struct {
	Generate *struct {
		Servers  *bool `json:"servers" yaml:"servers"`
		Clients  *bool `json:"clients" yaml:"clients"`
		Messages *bool `json:"messages" yaml:"messages"`
	} `json:"generate" yaml:"generate"`
	GeneratedSource *struct {
		AccessLevel          *AccessLevel `json:"accessLevel" yaml:"accessLevel"`
		AccessLevelOnImports *bool        `json:"accessLevelOnImports" yaml:"accessLevelOnImports"`
		ModuleMappings       *string      `json:"protoPathModuleMappings" yaml:"protoPathModuleMappings"`
		ExtraModuleImports   []string     `json:"extraModuleImports" yaml:"extraModuleImports"`
	} `json:"generatedSource" yaml:"generatedSource"`
	Protoc *struct {
		ImportPaths    []string `json:"importPaths" yaml:"importPaths"`
		ExecutablePath *string  `json:"executablePath" yaml:"executablePath"`
	} `json:"protoc" yaml:"protoc"`
}

// Format is the encoding of a config file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// IsConfigFile reports whether the given path names a config file, judging
// only by its base name.
func IsConfigFile(path string) bool {
	_, ok := formatOf(path)
	return ok
}

func formatOf(path string) (Format, bool) {
	base := filepath.Base(path)
	for _, ext := range fileExtensions {
		if base == FileBaseName+ext {
			if ext == ".json" {
				return FormatJSON, true
			}
			return FormatYAML, true
		}
	}
	return 0, false
}

// Load reads and decodes the config file at the given path. The format is
// chosen by file extension: ".json" is JSON, anything else is YAML.
func Load(path string) (GenerationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("failed to load config %s: %v", path, err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("failed to load config %s: %v", path, err)
	}
	conf, err := Decode(data, format, dir)
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("failed to load config %s: %v", path, err)
	}
	return conf, nil
}

// Decode decodes config file contents, filling unset values with defaults.
// Unknown keys are ignored. Relative import paths are resolved against dir,
// the directory that contains the config file.
func Decode(data []byte, format Format, dir string) (GenerationConfig, error) {
	var f configFile
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		err = fmt.Errorf("unknown config format %d", format)
	}
	if err != nil {
		return GenerationConfig{}, err
	}

	conf := Default()
	if g := f.Generate; g != nil {
		setBool(&conf.Servers, g.Servers)
		setBool(&conf.Clients, g.Clients)
		setBool(&conf.Messages, g.Messages)
	}
	if s := f.GeneratedSource; s != nil {
		if s.AccessLevel != nil {
			conf.AccessLevel = *s.AccessLevel
		}
		setBool(&conf.AccessLevelOnImports, s.AccessLevelOnImports)
		if s.ModuleMappings != nil && *s.ModuleMappings != "" {
			conf.ModuleMappingsPath = resolvePath(dir, *s.ModuleMappings)
		}
		conf.ExtraImports = append(conf.ExtraImports, s.ExtraModuleImports...)
	}
	if p := f.Protoc; p != nil {
		for _, importPath := range p.ImportPaths {
			conf.ImportPaths = append(conf.ImportPaths, resolvePath(dir, importPath))
		}
		if p.ExecutablePath != nil {
			conf.ProtocPath = *p.ExecutablePath
		}
	}
	return conf, nil
}

// resolvePath places p under the config file's directory, even when p is
// absolute.
func resolvePath(dir, p string) string {
	return filepath.Join(dir, p)
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
