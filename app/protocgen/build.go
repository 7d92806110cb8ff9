package protocgen

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jhump/grpcgen/config"
	"github.com/jhump/grpcgen/invoke"
	"github.com/jhump/grpcgen/paths"
)

var buildFlags = []string{
	"--help", "--verbose", "--dry-run",
	"--protoc-path", "--output-path", "--plugin-path",
}

type buildCommand struct {
	baseCommand
}

func (c *buildCommand) Synopsis() string {
	return "Generates code for every schema file in a source tree"
}

func (c *buildCommand) Help() string {
	return strings.TrimSpace(buildUsage)
}

func (c *buildCommand) Run(args []string) int {
	logger := c.newLogger()
	opts, code, ok := c.parse(args, buildFlags, c.Help(), logger)
	if !ok {
		return code
	}
	if len(opts.files) != 1 {
		c.ui.Error("build requires exactly one source directory")
		return 1
	}
	outputs, err := c.build(context.Background(), opts.files[0], opts, logger)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	if !opts.dryRun {
		for _, out := range outputs {
			c.ui.Output(out)
		}
	}
	return 0
}

// build generates code for every schema file under srcDir and returns the
// paths of the generated files, sorted. Each file is configured by its
// nearest config file. Files sharing a config are generated together, and
// the groups run in parallel.
func (c *buildCommand) build(ctx context.Context, srcDir string, opts *options, logger hclog.Logger) ([]string, error) {
	srcDir, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, err
	}
	configs, err := config.Discover(srcDir, logger)
	if err != nil {
		return nil, err
	}
	files, err := findSchemaFiles(srcDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Info("no schema files found", "dir", srcDir)
		return nil, nil
	}

	groups := map[string][]string{}
	for _, f := range files {
		confPath, _, err := configs.Resolve(f)
		if err != nil {
			return nil, err
		}
		groups[confPath] = append(groups[confPath], f)
	}
	confPaths := make([]string, 0, len(groups))
	for p := range groups {
		confPaths = append(confPaths, p)
	}
	sort.Strings(confPaths)

	outputRoot := opts.conf.OutputPath
	if outputRoot == "" {
		outputRoot = srcDir
	}
	var invs []invoke.Invocation
	for _, confPath := range confPaths {
		conf, _ := configs.Get(confPath)
		conf.FileNaming = config.FileNamingFullPath
		conf.OutputPath = outputRoot
		planOpts, err := c.tools(opts, conf)
		if err != nil {
			return nil, err
		}
		confDir := filepath.Dir(confPath)
		planOpts.BaseDir = confDir
		planOpts.DefaultImportPaths = []string{confDir}
		logger.Debug("resolved config", "config", confPath, "files", len(groups[confPath]))
		invs = append(invs, invoke.Plan(conf, groups[confPath], planOpts)...)
	}

	r := c.runner(opts, logger)
	var g errgroup.Group
	if opts.dryRun {
		g.SetLimit(1)
	}
	for _, inv := range invs {
		inv := inv
		g.Go(func() error {
			return r.Run(ctx, inv)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var outputs []string
	for _, inv := range invs {
		outputs = append(outputs, inv.Outputs...)
	}
	sort.Strings(outputs)
	return outputs, nil
}

// findSchemaFiles returns the schema files in the tree rooted at dir, sorted.
func findSchemaFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, paths.SchemaExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

const buildUsage = `
Usage: protocgen build [options] SOURCE_DIR

  Generates code for every schema file under SOURCE_DIR. Each file is
  generated with the options of the nearest grpc-proto-generator-config.json
  file in its directory or a parent directory; it is an error for a schema
  file to have none. Generated files mirror the layout of the schema files
  below their config file's directory. The paths of generated files are
  printed on success.

Options:

  --protoc-path=PATH         The protoc executable to run, overriding config
                             files.
  --output-path=DIR          Root directory of generated files. Default:
                             SOURCE_DIR.
  --plugin-path=[protoc-gen-NAME=]PATH
                             Plugin executable to use. Repeatable.
  --dry-run                  Print the protoc commands instead of running them.
  -v, --verbose              Log debug output.
  -h, --help                 Print this help.
`
