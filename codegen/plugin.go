package codegen

import (
	"fmt"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/types/pluginpb"

	"github.com/jhump/grpcgen/config"
	"github.com/jhump/grpcgen/paths"
	"github.com/jhump/grpcgen/plugins"
)

// PluginName is the name under which Generate is registered for in-process
// use.
const PluginName = "grpc"

func init() {
	plugins.RegisterPlugin(PluginName, Generate)
}

// Options are the parameters of the services plugin, given as comma
// separated "key=value" pairs in protoc's "--<name>_opt" arguments.
type Options struct {
	Target               string
	AccessLevel          config.AccessLevel
	Servers              bool
	Clients              bool
	FileNaming           config.FileNaming
	AccessLevelOnImports bool
	// Path to a module mapping document; see ParseModuleMappings.
	ModuleMappingsPath string
	ExtraImports       []string
	// Go package overrides from "M<protofile>=<gopkg>" options.
	ImportMap map[string]string
}

// DefaultOptions returns the options in effect when no parameters are given.
func DefaultOptions() Options {
	return Options{
		Target:      TargetSwift,
		AccessLevel: config.AccessLevelInternal,
		Servers:     true,
		Clients:     true,
		FileNaming:  config.FileNamingFullPath,
	}
}

// ParseOptions parses plugin parameters. Unknown keys are errors.
func ParseOptions(args []string) (Options, error) {
	opts := DefaultOptions()
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		key, val, hasVal := strings.Cut(arg, "=")
		if strings.HasPrefix(key, "M") && len(key) > 1 && hasVal {
			if opts.ImportMap == nil {
				opts.ImportMap = map[string]string{}
			}
			opts.ImportMap[key[1:]] = val
			continue
		}
		if !hasVal {
			return Options{}, fmt.Errorf("option %q has no value", key)
		}
		var err error
		switch key {
		case "Target":
			opts.Target = val
		case "Visibility":
			opts.AccessLevel, err = config.ParseAccessLevel(val)
		case "Server":
			opts.Servers, err = parseBoolOption(key, val)
		case "Client":
			opts.Clients, err = parseBoolOption(key, val)
		case "FileNaming":
			opts.FileNaming, err = config.ParseFileNaming(val)
		case "UseAccessLevelOnImports":
			opts.AccessLevelOnImports, err = parseBoolOption(key, val)
		case "ProtoPathModuleMappings":
			opts.ModuleMappingsPath = val
		case "ExtraModuleImports":
			opts.ExtraImports = append(opts.ExtraImports, val)
		default:
			return Options{}, fmt.Errorf("unknown option %q", key)
		}
		if err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

func parseBoolOption(key, val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("option %s: invalid value %q; expecting true or false", key, val)
	}
}

// Generate is the services plugin. It emits one file per input file that
// declares at least one service.
func Generate(req *plugins.CodeGenRequest, resp *plugins.CodeGenResponse) error {
	resp.SupportFeatures(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)

	opts, err := ParseOptions(req.Args)
	if err != nil {
		return err
	}
	target, err := NewTarget(opts.Target, opts.ImportMap)
	if err != nil {
		return err
	}
	reqOpts := RequestOptions{
		Target:       target,
		ExtraImports: opts.ExtraImports,
		AccessLevel:  opts.AccessLevel,
	}
	if opts.ModuleMappingsPath != "" {
		mappings, err := LoadModuleMappings(opts.ModuleMappingsPath)
		if err != nil {
			return err
		}
		reqOpts.Modules = mappings
	}
	if err := reqOpts.Validate(); err != nil {
		return err
	}
	renderOpts := RenderOptions{
		AccessLevel:          opts.AccessLevel,
		AccessLevelOnImports: opts.AccessLevelOnImports,
		Servers:              opts.Servers,
		Clients:              opts.Clients,
	}

	for _, fd := range req.Files {
		if len(fd.GetServices()) == 0 {
			continue
		}
		if err := paths.ValidateInputFiles([]string{fd.GetName()}); err != nil {
			return err
		}
		genReq := BuildRequest(fd, reqOpts)
		name := paths.DeriveOutputPath(fd.GetName(), opts.FileNaming, "", "", target.ServicesExtension)
		if err := Render(resp.OutputFile(filepath.ToSlash(name)), genReq, target, renderOpts); err != nil {
			return err
		}
	}
	return nil
}
