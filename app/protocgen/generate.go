package protocgen

import (
	"context"
	"strings"

	"github.com/jhump/grpcgen/invoke"
	"github.com/jhump/grpcgen/paths"
)

var generateFlags = []string{
	"--help", "--verbose", "--dry-run",
	"--servers", "--clients", "--messages",
	"--file-naming", "--access-level", "--access-level-on-imports",
	"--import-path", "--protoc-path", "--output-path", "--plugin-path",
	"--module-mappings", "--extra-module-import",
}

type generateCommand struct {
	baseCommand
}

func (c *generateCommand) Synopsis() string {
	return "Generates code for the given schema files"
}

func (c *generateCommand) Help() string {
	return strings.TrimSpace(generateUsage)
}

func (c *generateCommand) Run(args []string) int {
	logger := c.newLogger()
	opts, code, ok := c.parse(args, generateFlags, c.Help(), logger)
	if !ok {
		return code
	}
	if len(opts.files) == 0 {
		c.ui.Error(ErrMissingInputFile.Error())
		return 1
	}
	if err := paths.ValidateInputFiles(opts.files); err != nil {
		c.ui.Error(err.Error())
		return 1
	}

	planOpts, err := c.tools(opts, opts.conf)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	if len(opts.conf.ImportPaths) > 0 {
		planOpts.BaseDir = opts.conf.ImportPaths[0]
	}

	invs := invoke.Plan(opts.conf, opts.files, planOpts)
	if len(invs) == 0 {
		logger.Warn("nothing to generate: every kind of output is disabled")
		return 0
	}
	if err := c.runSequentially(context.Background(), c.runner(opts, logger), invs); err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	if !opts.dryRun {
		for _, inv := range invs {
			logger.Debug("generated files", "kind", inv.Kind, "outputs", inv.Outputs)
		}
	}
	return 0
}

const generateUsage = `
Usage: protocgen generate [options] FILE...

  Runs protoc with the messages and services plugins over the given schema
  files.

Options:

  --servers, --no-servers    Whether to generate server code. Default: on.
  --clients, --no-clients    Whether to generate client code. Default: on.
  --messages, --no-messages  Whether to generate message code. Default: on.
  --file-naming=NAMING       FullPath, PathToUnderscores, or DropPath.
  --access-level=LEVEL       internal, public, or package.
  --access-level-on-imports[=BOOL]
                             Whether imports carry an explicit access level.
  -I, --import-path=DIR      Directory searched for imports. Repeatable.
  --protoc-path=PATH         The protoc executable to run.
  --output-path=DIR          Root directory of generated files.
  --plugin-path=[protoc-gen-NAME=]PATH
                             Plugin executable to use. Repeatable.
  --module-mappings=PATH     Mapping of schema files to modules.
  --extra-module-import=MOD  Module imported by generated service code.
                             Repeatable.
  --dry-run                  Print the protoc commands instead of running them.
  -v, --verbose              Log debug output.
  -h, --help                 Print this help.
`
