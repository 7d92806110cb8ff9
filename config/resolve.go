package config

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// NoApplicableConfigError is returned when no config file is found in any
// directory enclosing a schema file.
type NoApplicableConfigError struct {
	File string
}

func (e *NoApplicableConfigError) Error() string {
	return fmt.Sprintf("no config file found for %s: expected a %s file in its directory or a parent directory", e.File, FileBaseName+".json")
}

// DuplicateConfigError is returned when a single directory contains more than
// one config file. Resolution would be ambiguous, so it is rejected.
type DuplicateConfigError struct {
	Dir   string
	Paths []string
}

func (e *DuplicateConfigError) Error() string {
	return fmt.Sprintf("directory %s contains more than one config file: %v", e.Dir, e.Paths)
}

// Set is a collection of config files, keyed by the path of each file. A Set
// never contains two config files in the same directory.
type Set struct {
	configs map[string]GenerationConfig
	byDir   map[string]string
}

// NewSet creates a set from the given config files, keyed by path. It returns
// a *DuplicateConfigError if two of the files share a directory.
func NewSet(configs map[string]GenerationConfig) (*Set, error) {
	s := &Set{
		configs: make(map[string]GenerationConfig, len(configs)),
		byDir:   make(map[string]string, len(configs)),
	}
	for _, p := range sortedKeys(configs) {
		if err := s.add(p, configs[p]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) add(path string, conf GenerationConfig) error {
	dir := filepath.Dir(filepath.Clean(path))
	if existing, ok := s.byDir[dir]; ok {
		return &DuplicateConfigError{Dir: dir, Paths: []string{existing, path}}
	}
	s.byDir[dir] = path
	s.configs[path] = conf
	return nil
}

// Len returns the number of config files in the set.
func (s *Set) Len() int {
	return len(s.configs)
}

// Paths returns the paths of all config files in the set, sorted.
func (s *Set) Paths() []string {
	return sortedKeys(s.configs)
}

// Get returns the config loaded from the given path.
func (s *Set) Get(path string) (GenerationConfig, bool) {
	c, ok := s.configs[path]
	return c, ok
}

// Resolve finds the config that applies to the given schema file. It is the
// nearest config file in the file's directory or one of its parents. If there
// is none, a *NoApplicableConfigError is returned.
func (s *Set) Resolve(file string) (string, GenerationConfig, error) {
	p, conf, ok := FindApplicable(file, s.configs)
	if !ok {
		return "", GenerationConfig{}, &NoApplicableConfigError{File: file}
	}
	return p, conf, nil
}

// FindApplicable returns the config whose directory is the longest prefix of
// the target file's directory. Path components are compared, not strings, so
// "/a/bc" is not inside "/a/b". The bool result is false if no config's
// directory encloses the target.
//
// Configs are examined in sorted order of their paths, so that if two configs
// share a directory the choice is at least deterministic. A Set never
// contains such a pair.
func FindApplicable(target string, configs map[string]GenerationConfig) (string, GenerationConfig, bool) {
	targetComponents := Components(target)
	paths := sortedKeys(configs)
	dirs := make([][]string, len(paths))
	for i, p := range paths {
		c := Components(p)
		dirs[i] = c[:len(c)-1]
	}

	for end := len(targetComponents) - 1; end >= 0; end-- {
		prefix := targetComponents[:end]
		for i, dir := range dirs {
			if equalComponents(prefix, dir) {
				return paths[i], configs[paths[i]], true
			}
		}
	}
	return "", GenerationConfig{}, false
}

// Components splits a path into its components. An absolute path begins with
// a "/" component (or a volume name on Windows). The path is cleaned first, so
// "a//b/./c" yields ["a", "b", "c"].
func Components(p string) []string {
	if p == "" {
		return nil
	}
	p = filepath.Clean(p)
	var components []string
	vol := filepath.VolumeName(p)
	rest := p[len(vol):]
	if len(rest) > 0 && rest[0] == filepath.Separator {
		components = append(components, vol+string(filepath.Separator))
		rest = rest[1:]
	} else if vol != "" {
		components = append(components, vol)
	}
	if rest == "" || rest == "." {
		return components
	}
	start := 0
	for i := 0; i < len(rest); i++ {
		if rest[i] == filepath.Separator {
			components = append(components, rest[start:i])
			start = i + 1
		}
	}
	return append(components, rest[start:])
}

func equalComponents(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Discover walks the tree rooted at root and loads every config file in it.
// Config files are recognized by name (see FileBaseName). The keys of the
// returned set are absolute paths.
func Discover(root string, logger hclog.Logger) (*Set, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	s := &Set{
		configs: map[string]GenerationConfig{},
		byDir:   map[string]string{},
	}
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsConfigFile(path) {
			return nil
		}
		conf, err := Load(path)
		if err != nil {
			return err
		}
		logger.Debug("found config file", "path", path)
		return s.add(path, conf)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func sortedKeys(m map[string]GenerationConfig) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
