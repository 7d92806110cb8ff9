// Package paths computes the paths of generated files from the paths of the
// schema files they are generated from.
package paths

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/jhump/grpcgen/config"
)

// SchemaExtension is the file extension of schema source files.
const SchemaExtension = ".proto"

// DeriveOutputPath computes the path of the file generated from input, which
// must end in ".proto". The stem of the output name is the input's base name
// with ".proto" replaced by ext. Leading directory components that input
// shares with baseDir are dropped; how the remaining directories are used
// depends on naming:
//
//   - FullPath: outputRoot/<dirs>/<stem>
//   - PathToUnderscores: outputRoot/<dirs joined with "_">_<stem>
//   - DropPath: outputRoot/<stem>
//
// No file system access takes place.
func DeriveOutputPath(input string, naming config.FileNaming, baseDir, outputRoot, ext string) string {
	if !strings.HasSuffix(input, SchemaExtension) {
		panic(fmt.Sprintf("input file %q does not have %s extension", input, SchemaExtension))
	}
	stem := filepath.Base(input)
	stem = stem[:len(stem)-len(SchemaExtension)] + ext

	dirs := config.Components(filepath.Dir(input))
	for _, c := range config.Components(baseDir) {
		if len(dirs) == 0 || dirs[0] != c {
			break
		}
		dirs = dirs[1:]
	}

	switch naming {
	case config.FileNamingFullPath:
		return filepath.Join(append(append([]string{outputRoot}, dirs...), stem)...)
	case config.FileNamingPathToUnderscores:
		return filepath.Join(outputRoot, strings.Join(append(dirs, stem), "_"))
	case config.FileNamingDropPath:
		return filepath.Join(outputRoot, stem)
	default:
		panic(fmt.Sprintf("unknown file naming: %v", naming))
	}
}

// InvalidInputFileExtensionError lists every input that is not a schema file.
// It wraps one error per file.
type InvalidInputFileExtensionError struct {
	Files []string
	errs  *multierror.Error
}

func (e *InvalidInputFileExtensionError) Error() string {
	return e.errs.Error()
}

func (e *InvalidInputFileExtensionError) Unwrap() error {
	return e.errs
}

// ValidateInputFiles checks that every file has the schema extension. All
// offending files are reported at once, in sorted order.
func ValidateInputFiles(files []string) error {
	var invalid []string
	for _, f := range files {
		if !strings.HasSuffix(f, SchemaExtension) {
			invalid = append(invalid, f)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	merr := &multierror.Error{ErrorFormat: listInvalidFiles}
	for _, f := range invalid {
		merr = multierror.Append(merr, fmt.Errorf("%s: file does not have %s extension", f, SchemaExtension))
	}
	return &InvalidInputFileExtensionError{Files: invalid, errs: merr}
}

func listInvalidFiles(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  " + err.Error()
	}
	return fmt.Sprintf("invalid input files:\n%s", strings.Join(lines, "\n"))
}
