package codegen

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"gopkg.in/yaml.v2"
)

// ModuleMapper reports which modules code generated for a file must import
// in addition to the target's runtime modules.
type ModuleMapper interface {
	NeededModules(fd *desc.FileDescriptor) []string
}

// IsWellKnownFile reports whether the named schema file is one of the files
// bundled with the protobuf runtime, whose generated types live in the
// target's well-known-types module.
func IsWellKnownFile(name string) bool {
	return strings.HasPrefix(name, "google/protobuf/")
}

// ModuleMappings maps schema file names to the modules that hold the code
// generated from them.
type ModuleMappings map[string]string

var _ ModuleMapper = ModuleMappings(nil)

type mappingFile struct {
	Mapping []struct {
		ModuleName    string   `yaml:"module_name"`
		ProtoFilePath []string `yaml:"proto_file_path"`
	} `yaml:"mapping"`
}

// ParseModuleMappings decodes a mapping document, in YAML or JSON, of this
// form:
//
//	mapping:
//	  - module_name: Foo
//	    proto_file_path: [foo/a.proto, foo/b.proto]
//
// A file mapped to two different modules is an error.
func ParseModuleMappings(data []byte) (ModuleMappings, error) {
	var f mappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	m := ModuleMappings{}
	for i, entry := range f.Mapping {
		if entry.ModuleName == "" {
			return nil, fmt.Errorf("mapping entry #%d has no module_name", i+1)
		}
		for _, p := range entry.ProtoFilePath {
			if existing, ok := m[p]; ok && existing != entry.ModuleName {
				return nil, fmt.Errorf("file %q is mapped to both %q and %q", p, existing, entry.ModuleName)
			}
			m[p] = entry.ModuleName
		}
	}
	return m, nil
}

// LoadModuleMappings reads and decodes the mapping document at path.
func LoadModuleMappings(path string) (ModuleMappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseModuleMappings(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse module mappings %s: %v", path, err)
	}
	return m, nil
}

// NeededModules returns the sorted, de-duplicated modules of fd's direct
// dependencies and of everything they publicly import. Well-known files and
// files in fd's own module are skipped.
func (m ModuleMappings) NeededModules(fd *desc.FileDescriptor) []string {
	if len(m) == 0 {
		return nil
	}
	own := m[fd.GetName()]
	seen := map[string]struct{}{}
	visited := map[string]struct{}{}
	var visit func(deps []*desc.FileDescriptor)
	visit = func(deps []*desc.FileDescriptor) {
		for _, dep := range deps {
			if _, ok := visited[dep.GetName()]; ok {
				continue
			}
			visited[dep.GetName()] = struct{}{}
			if !IsWellKnownFile(dep.GetName()) {
				if mod, ok := m[dep.GetName()]; ok && mod != own {
					seen[mod] = struct{}{}
				}
			}
			visit(dep.GetPublicDependencies())
		}
	}
	visit(fd.GetDependencies())

	mods := make([]string, 0, len(seen))
	for mod := range seen {
		mods = append(mods, mod)
	}
	sort.Strings(mods)
	return mods
}
