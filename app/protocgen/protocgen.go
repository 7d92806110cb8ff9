// Package protocgen implements the protocgen command. It drives protoc and
// the messages and services plugins, either for an explicit list of schema
// files (generate) or for every schema file in a source tree, configured by
// the config files found there (build).
package protocgen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/jhump/grpcgen/config"
	"github.com/jhump/grpcgen/invoke"
)

var version = "dev build <no version set>" // can be replaced by -X linker flag

// Main is the entrypoint for the program.
func Main() {
	var searchDirs []string
	if exe, err := os.Executable(); err == nil {
		searchDirs = []string{filepath.Dir(exe)}
	}
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr, Env{Getenv: os.Getenv, SearchDirs: searchDirs}))
}

// Env is the part of the process environment that commands consult.
type Env struct {
	Getenv func(string) string
	// Directories searched for protoc and plugin executables before the PATH.
	SearchDirs []string
}

// Run runs the program and returns the exit code.
func Run(args []string, stdout, stderr io.Writer, env Env) int {
	ui := &cli.BasicUi{Writer: stdout, ErrorWriter: stderr}
	c := &cli.CLI{
		Name:        "protocgen",
		Version:     version,
		Args:        args,
		Commands:    Commands(ui, env),
		HelpWriter:  stdout,
		ErrorWriter: stderr,
	}
	code, err := c.Run()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return code
}

// Commands returns the subcommands of protocgen.
func Commands(ui cli.Ui, env Env) map[string]cli.CommandFactory {
	if env.Getenv == nil {
		env.Getenv = func(string) string { return "" }
	}
	base := baseCommand{ui: ui, env: env}
	return map[string]cli.CommandFactory{
		"generate": func() (cli.Command, error) {
			return &generateCommand{baseCommand: base}, nil
		},
		"build": func() (cli.Command, error) {
			return &buildCommand{baseCommand: base}, nil
		},
		"inspect": func() (cli.Command, error) {
			return &inspectCommand{baseCommand: base}, nil
		},
	}
}

type baseCommand struct {
	ui  cli.Ui
	env Env
}

// newLogger returns a logger that writes through the ui's error stream.
func (c *baseCommand) newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "protocgen",
		Level:  hclog.Info,
		Output: uiWriter(c.ui.Error),
	})
}

// parse parses args, reporting problems through the ui. If the returned
// bool is false, the command should exit with the returned code.
func (c *baseCommand) parse(args, accepted []string, help string, logger hclog.Logger) (*options, int, bool) {
	opts := newOptions()
	if err := parseFlags(args, accepted, opts, logger); err != nil {
		c.ui.Error(err.Error())
		return nil, 1, false
	}
	if opts.help {
		c.ui.Output(help)
		return nil, 0, false
	}
	if opts.verbose {
		logger.SetLevel(hclog.Debug)
	}
	return opts, 0, true
}

// tools locates protoc and the plugins. A protoc path from flags wins over
// one from a config file.
func (c *baseCommand) tools(opts *options, conf config.GenerationConfig) (invoke.PlanOptions, error) {
	protocPath := opts.conf.ProtocPath
	if protocPath == "" {
		protocPath = conf.ProtocPath
	}
	protocPath, err := invoke.DiscoverProtoc(protocPath, c.env.SearchDirs, c.env.Getenv)
	if err != nil {
		return invoke.PlanOptions{}, err
	}
	pluginPaths := make(map[invoke.PluginKind]string, 2)
	for _, kind := range []invoke.PluginKind{invoke.KindMessages, invoke.KindServices} {
		if p, ok := opts.pluginPaths[kind]; ok {
			pluginPaths[kind] = p
		} else if p := invoke.FindPlugin(kind, c.env.SearchDirs, c.env.Getenv); p != "" {
			pluginPaths[kind] = p
		}
	}
	return invoke.PlanOptions{ProtocPath: protocPath, PluginPaths: pluginPaths}, nil
}

func (c *baseCommand) runner(opts *options, logger hclog.Logger) *invoke.Runner {
	return &invoke.Runner{
		Logger: logger,
		DryRun: opts.dryRun,
		Stdout: uiWriter(c.ui.Output),
	}
}

func (c *baseCommand) runSequentially(ctx context.Context, r *invoke.Runner, invs []invoke.Invocation) error {
	for _, inv := range invs {
		if err := r.Run(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

// uiWriter adapts one of the output methods of a cli.Ui to io.Writer. Each
// write becomes one message, without its trailing newline.
type uiWriter func(string)

func (w uiWriter) Write(p []byte) (int, error) {
	w(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
