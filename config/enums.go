package config

import (
	"fmt"
	"strings"
)

// AccessLevel is the visibility of generated declarations (and, optionally,
// of the imports in generated files).
type AccessLevel int

const (
	AccessLevelInternal AccessLevel = iota
	AccessLevelPublic
	AccessLevelPackage
)

var accessLevelNames = [...]string{
	AccessLevelInternal: "internal",
	AccessLevelPublic:   "public",
	AccessLevelPackage:  "package",
}

// ParseAccessLevel parses an access level. It accepts the raw form used in
// config files and on the command-line ("internal") as well as the
// capitalized form used in plugin options ("Internal").
func ParseAccessLevel(s string) (AccessLevel, error) {
	for i, name := range accessLevelNames {
		if s == name || s == capitalize(name) {
			return AccessLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown access level %q: must be one of %s", s, strings.Join(accessLevelNames[:], ", "))
}

// String returns the raw form of the access level, e.g. "internal".
func (a AccessLevel) String() string {
	if a < 0 || int(a) >= len(accessLevelNames) {
		return fmt.Sprintf("AccessLevel(%d)", int(a))
	}
	return accessLevelNames[a]
}

// PluginOption returns the spelling used for the Visibility plugin option,
// e.g. "Internal".
func (a AccessLevel) PluginOption() string {
	return capitalize(a.String())
}

func (a AccessLevel) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccessLevel) UnmarshalText(b []byte) error {
	v, err := ParseAccessLevel(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a *AccessLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

// FileNaming is the strategy for mapping an input schema file path to the
// path of a generated file.
type FileNaming int

const (
	// FileNamingFullPath mirrors the input's directory structure below the
	// output root.
	FileNamingFullPath FileNaming = iota
	// FileNamingPathToUnderscores flattens the input's directories into the
	// file name, joined with underscores.
	FileNamingPathToUnderscores
	// FileNamingDropPath keeps only the input's base name. Distinct inputs
	// with the same base name collide.
	FileNamingDropPath
)

var fileNamingNames = [...]string{
	FileNamingFullPath:          "FullPath",
	FileNamingPathToUnderscores: "PathToUnderscores",
	FileNamingDropPath:          "DropPath",
}

// ParseFileNaming parses a file naming strategy by its raw name.
func ParseFileNaming(s string) (FileNaming, error) {
	for i, name := range fileNamingNames {
		if s == name {
			return FileNaming(i), nil
		}
	}
	return 0, fmt.Errorf("unknown file naming %q: must be one of %s", s, strings.Join(fileNamingNames[:], ", "))
}

func (n FileNaming) String() string {
	if n < 0 || int(n) >= len(fileNamingNames) {
		return fmt.Sprintf("FileNaming(%d)", int(n))
	}
	return fileNamingNames[n]
}

func (n FileNaming) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *FileNaming) UnmarshalText(b []byte) error {
	v, err := ParseFileNaming(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
