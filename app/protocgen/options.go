package protocgen

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jhump/grpcgen/config"
	"github.com/jhump/grpcgen/invoke"
)

// options are the values parsed from a command's arguments.
type options struct {
	conf        config.GenerationConfig
	pluginPaths map[invoke.PluginKind]string
	dryRun      bool
	verbose     bool
	help        bool
	files       []string

	// inspect only
	target string
	render bool
	plugin string
}

func newOptions() *options {
	return &options{
		conf:        config.Default(),
		pluginPaths: map[invoke.PluginKind]string{},
	}
}

var flagAliases = map[string]string{
	"-I": "--import-path",
	"-h": "--help",
	"-v": "--verbose",
}

// toggleFlags maps every toggle and its negation to the positive flag name
// and the value it sets.
var toggleFlags = map[string]struct {
	positive string
	value    bool
}{
	"--servers":     {"--servers", true},
	"--no-servers":  {"--servers", false},
	"--clients":     {"--clients", true},
	"--no-clients":  {"--clients", false},
	"--messages":    {"--messages", true},
	"--no-messages": {"--messages", false},
}

func (o *options) toggle(positive string) *bool {
	switch positive {
	case "--servers":
		return &o.conf.Servers
	case "--clients":
		return &o.conf.Clients
	case "--messages":
		return &o.conf.Messages
	}
	panic("unknown toggle " + positive)
}

// parseFlags parses args into opts. Only the flags named in accepted (by
// long name; a toggle also accepts its negation) are recognized. Arguments
// that are not flags, and everything after "--", are input files. A
// single-valued flag that is repeated keeps its first value and a warning is
// logged.
func parseFlags(args []string, accepted []string, opts *options, logger hclog.Logger) error {
	acceptedSet := make(map[string]struct{}, len(accepted))
	for _, a := range accepted {
		acceptedSet[a] = struct{}{}
	}
	seen := map[string]struct{}{}
	firstUse := func(name string) bool {
		if _, ok := seen[name]; ok {
			logger.Warn("flag given more than once, using its first value", "flag", name)
			return false
		}
		seen[name] = struct{}{}
		return true
	}
	toggled := map[string]string{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			opts.files = append(opts.files, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			opts.files = append(opts.files, a)
			continue
		}
		var parts []string
		if strings.HasPrefix(a, "-I") && len(a) > 2 {
			// fused form, as protoc accepts: -Iprotos
			parts = []string{"-I", a[2:]}
		} else {
			parts = strings.SplitN(a, "=", 2)
		}
		name := parts[0]
		if alias, ok := flagAliases[name]; ok {
			name = alias
		}
		lookupName := name
		if t, ok := toggleFlags[name]; ok {
			lookupName = t.positive
		}
		if _, ok := acceptedSet[lookupName]; !ok {
			return &UnknownOptionError{Option: parts[0]}
		}

		getOptionArg := func() (string, error) {
			if len(parts) > 1 {
				return parts[1], nil
			}
			if len(args) > i+1 {
				i++
				return args[i], nil
			}
			return "", &InvalidArgumentValueError{Flag: parts[0], Err: fmt.Errorf("missing value")}
		}
		getBoolArg := func() (bool, error) {
			if len(parts) > 1 {
				switch strings.ToLower(parts[1]) {
				case "true":
					return true, nil
				case "false":
					return false, nil
				default:
					return false, &InvalidArgumentValueError{Flag: parts[0], Value: parts[1], Err: fmt.Errorf("must be 'true' or 'false'")}
				}
			}
			return true, nil
		}
		noOptionArg := func() error {
			if len(parts) > 1 {
				return &InvalidArgumentValueError{Flag: parts[0], Value: parts[1], Err: fmt.Errorf("flag does not take a value")}
			}
			return nil
		}

		switch name {
		case "--help":
			if err := noOptionArg(); err != nil {
				return err
			}
			opts.help = true
		case "--verbose":
			if err := noOptionArg(); err != nil {
				return err
			}
			opts.verbose = true
		case "--dry-run":
			if err := noOptionArg(); err != nil {
				return err
			}
			opts.dryRun = true
		case "--render":
			if err := noOptionArg(); err != nil {
				return err
			}
			opts.render = true
		case "--servers", "--no-servers", "--clients", "--no-clients", "--messages", "--no-messages":
			if err := noOptionArg(); err != nil {
				return err
			}
			t := toggleFlags[name]
			if prev, ok := toggled[t.positive]; ok {
				if prev != name {
					return &ConflictingFlagsError{Flag: t.positive, Negation: "--no-" + t.positive[2:]}
				}
				logger.Warn("flag given more than once", "flag", name)
				continue
			}
			toggled[t.positive] = name
			*opts.toggle(t.positive) = t.value
		case "--file-naming":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			if !firstUse(name) {
				continue
			}
			naming, err := config.ParseFileNaming(value)
			if err != nil {
				return &InvalidArgumentValueError{Flag: parts[0], Value: value, Err: err}
			}
			opts.conf.FileNaming = naming
		case "--access-level":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			if !firstUse(name) {
				continue
			}
			level, err := config.ParseAccessLevel(value)
			if err != nil {
				return &InvalidArgumentValueError{Flag: parts[0], Value: value, Err: err}
			}
			opts.conf.AccessLevel = level
		case "--access-level-on-imports":
			value, err := getBoolArg()
			if err != nil {
				return err
			}
			if !firstUse(name) {
				continue
			}
			opts.conf.AccessLevelOnImports = value
		case "--import-path":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			opts.conf.ImportPaths = append(opts.conf.ImportPaths, value)
		case "--protoc-path":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			if firstUse(name) {
				opts.conf.ProtocPath = value
			}
		case "--output-path":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			if firstUse(name) {
				opts.conf.OutputPath = value
			}
		case "--module-mappings":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			if firstUse(name) {
				opts.conf.ModuleMappingsPath = value
			}
		case "--extra-module-import":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			opts.conf.ExtraImports = append(opts.conf.ExtraImports, value)
		case "--plugin-path":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			kind, location, err := parsePluginPath(value)
			if err != nil {
				return &InvalidArgumentValueError{Flag: parts[0], Value: value, Err: err}
			}
			if _, ok := opts.pluginPaths[kind]; ok {
				logger.Warn("plugin path given more than once, using its first value", "plugin", kind.ExecutableName())
				continue
			}
			opts.pluginPaths[kind] = location
		case "--target":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			if firstUse(name) {
				opts.target = value
			}
		case "--plugin":
			value, err := getOptionArg()
			if err != nil {
				return err
			}
			if firstUse(name) {
				opts.plugin = value
			}
		default:
			return &UnknownOptionError{Option: parts[0]}
		}
	}
	return nil
}

// parsePluginPath parses a "--plugin-path" value. It is either
// "protoc-gen-<name>=<location>" or just a location, in which case the
// plugin is identified by the location's base name.
func parsePluginPath(value string) (invoke.PluginKind, string, error) {
	var name, location string
	if n, loc, ok := strings.Cut(value, "="); ok {
		name, location = n, loc
	} else {
		name, location = strings.TrimSuffix(filepath.Base(value), ".exe"), value
	}
	if location == "" {
		return 0, "", fmt.Errorf("plugin location must not be blank")
	}
	for _, kind := range []invoke.PluginKind{invoke.KindMessages, invoke.KindServices} {
		if name == kind.ExecutableName() {
			return kind, location, nil
		}
	}
	return 0, "", fmt.Errorf("plugin name %s is not valid: expecting %s or %s",
		name, invoke.KindMessages.ExecutableName(), invoke.KindServices.ExecutableName())
}
