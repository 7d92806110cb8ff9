package protocgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"

	"github.com/jhump/grpcgen/codegen"
	"github.com/jhump/grpcgen/plugins"
)

var inspectFlags = []string{
	"--help", "--verbose",
	"--servers", "--clients",
	"--access-level", "--access-level-on-imports",
	"--import-path", "--module-mappings", "--extra-module-import",
	"--target", "--render", "--plugin",
}

type inspectCommand struct {
	baseCommand
}

func (c *inspectCommand) Synopsis() string {
	return "Prints the code generation request or code for schema files"
}

func (c *inspectCommand) Help() string {
	return strings.TrimSpace(inspectUsage)
}

func (c *inspectCommand) Run(args []string) int {
	logger := c.newLogger()
	opts, code, ok := c.parse(args, inspectFlags, c.Help(), logger)
	if !ok {
		return code
	}
	if len(opts.files) == 0 {
		c.ui.Error(ErrMissingInputFile.Error())
		return 1
	}
	if err := c.inspect(opts, logger); err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	return 0
}

func (c *inspectCommand) inspect(opts *options, logger hclog.Logger) error {
	fds, err := parseSchemaFiles(opts.conf.ImportPaths, opts.files)
	if err != nil {
		return err
	}
	if opts.plugin != "" {
		return c.runPlugin(opts, fds, logger)
	}

	target, err := codegen.NewTarget(opts.target, nil)
	if err != nil {
		return err
	}
	reqOpts := codegen.RequestOptions{
		Target:       target,
		ExtraImports: opts.conf.ExtraImports,
		AccessLevel:  opts.conf.AccessLevel,
	}
	if opts.conf.ModuleMappingsPath != "" {
		mappings, err := codegen.LoadModuleMappings(opts.conf.ModuleMappingsPath)
		if err != nil {
			return err
		}
		reqOpts.Modules = mappings
	}
	if err := reqOpts.Validate(); err != nil {
		return err
	}
	renderOpts := codegen.RenderOptions{
		AccessLevel:          opts.conf.AccessLevel,
		AccessLevelOnImports: opts.conf.AccessLevelOnImports,
		Servers:              opts.conf.Servers,
		Clients:              opts.conf.Clients,
	}

	for _, fd := range fds {
		req := codegen.BuildRequest(fd, reqOpts)
		if !opts.render {
			b, err := json.MarshalIndent(req, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode request for %s: %v", fd.GetName(), err)
			}
			c.ui.Output(string(b))
			continue
		}
		if len(req.Services) == 0 {
			logger.Info("skipping file without services", "file", fd.GetName())
			continue
		}
		var buf bytes.Buffer
		if err := codegen.Render(&buf, req, target, renderOpts); err != nil {
			return err
		}
		c.ui.Output(strings.TrimSuffix(buf.String(), "\n"))
	}
	return nil
}

// runPlugin runs a plugin over the parsed files and prints what it
// generates. The plugin is run in-process if it is registered under the
// given name; otherwise the name is the path of a plugin executable.
func (c *inspectCommand) runPlugin(opts *options, fds []*desc.FileDescriptor, logger hclog.Logger) error {
	req := &plugins.CodeGenRequest{
		Args:  pluginArgs(opts),
		Files: fds,
	}
	var resp *plugins.CodeGenResponse
	if p, ok := plugins.LookupPlugin(opts.plugin); ok {
		logger.Debug("running registered plugin", "plugin", opts.plugin)
		var err error
		if resp, err = plugins.Run(opts.plugin, p, req); err != nil {
			return err
		}
	} else {
		logger.Debug("running plugin executable", "path", opts.plugin)
		resp = plugins.NewCodeGenResponse(opts.plugin, nil)
		if err := plugins.Exec(context.Background(), opts.plugin, req, resp); err != nil {
			return err
		}
	}
	return resp.ForEach(func(name, insertionPoint string, contents []byte) error {
		if insertionPoint != "" {
			name += "@" + insertionPoint
		}
		c.ui.Output("// " + name)
		c.ui.Output(strings.TrimSuffix(string(contents), "\n"))
		return nil
	})
}

// pluginArgs encodes options as services plugin parameters.
func pluginArgs(opts *options) []string {
	args := []string{
		"Visibility=" + opts.conf.AccessLevel.PluginOption(),
		"Server=" + strconv.FormatBool(opts.conf.Servers),
		"Client=" + strconv.FormatBool(opts.conf.Clients),
		"UseAccessLevelOnImports=" + strconv.FormatBool(opts.conf.AccessLevelOnImports),
	}
	if opts.target != "" {
		args = append(args, "Target="+opts.target)
	}
	if opts.conf.ModuleMappingsPath != "" {
		args = append(args, "ProtoPathModuleMappings="+opts.conf.ModuleMappingsPath)
	}
	for _, imp := range opts.conf.ExtraImports {
		args = append(args, "ExtraModuleImports="+imp)
	}
	return args
}

func parseSchemaFiles(importPaths, files []string) ([]*desc.FileDescriptor, error) {
	files, err := protoparse.ResolveFilenames(importPaths, files...)
	if err != nil {
		return nil, err
	}
	p := protoparse.Parser{
		ImportPaths:           importPaths,
		IncludeSourceCodeInfo: true,
	}
	return p.ParseFiles(files...)
}

const inspectUsage = `
Usage: protocgen inspect [options] FILE...

  Parses the given schema files and prints the code generation request
  built for each one, as JSON. With --render, prints the generated code
  instead. With --plugin, runs a plugin and prints the files it generates.

Options:

  --servers, --no-servers    Whether to render server code. Default: on.
  --clients, --no-clients    Whether to render client code. Default: on.
  --access-level=LEVEL       internal, public, or package.
  --access-level-on-imports[=BOOL]
                             Whether imports carry an explicit access level.
  -I, --import-path=DIR      Directory searched for imports. Repeatable.
  --module-mappings=PATH     Mapping of schema files to modules.
  --extra-module-import=MOD  Module imported by generated service code.
                             Repeatable.
  --target=NAME              swift (the default) or go.
  --render                   Print generated code instead of the request.
  --plugin=NAME|PATH         Run a registered plugin, or a plugin executable.
  -v, --verbose              Log debug output.
  -h, --help                 Print this help.
`
