package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhump/protoreflect/desc"

	"github.com/jhump/grpcgen/config"
)

// syntaxPath is the source location path of a file's syntax statement.
var syntaxPath = []int32{12}

// RequestOptions control how a GenerationRequest is built.
type RequestOptions struct {
	Target *Target
	// Maps dependencies to the modules they are generated into. When nil,
	// the target's namer is used if it is also a ModuleMapper.
	Modules ModuleMapper
	// Additional modules to import.
	ExtraImports []string
	// Access level of imports other than the runtime module.
	AccessLevel config.AccessLevel
}

// Validate reports options the target cannot honor.
func (opts RequestOptions) Validate() error {
	if !opts.Target.namerImports {
		return nil
	}
	if opts.Modules != nil {
		return fmt.Errorf("target %s does not support module mappings", opts.Target.Name)
	}
	if len(opts.ExtraImports) > 0 {
		return fmt.Errorf("target %s does not support extra module imports", opts.Target.Name)
	}
	return nil
}

// BuildRequest translates the services of fd into a GenerationRequest. The
// result is a pure function of its inputs.
func BuildRequest(fd *desc.FileDescriptor, opts RequestOptions) *GenerationRequest {
	t := opts.Target
	req := &GenerationRequest{
		FileName:           fd.GetName(),
		LeadingTrivia:      leadingTrivia(fd, t),
		Dependencies:       dependencies(fd, opts),
		LookupSerializer:   t.serializer,
		LookupDeserializer: t.deserializer,
	}
	ns := t.Namer.Namespace(fd)
	for _, sd := range fd.GetServices() {
		svc := ServiceDescriptor{
			Documentation: leadingComments(sd),
			Name:          declaredName(sd.GetName()),
			Namespace:     ns,
		}
		for _, mtd := range sd.GetMethods() {
			svc.Methods = append(svc.Methods, MethodDescriptor{
				Documentation:     leadingComments(mtd),
				Name:              declaredName(mtd.GetName()),
				IsInputStreaming:  mtd.IsClientStreaming(),
				IsOutputStreaming: mtd.IsServerStreaming(),
				InputType:         t.Namer.MessageType(mtd.GetInputType(), fd),
				OutputType:        t.Namer.MessageType(mtd.GetOutputType(), fd),
			})
		}
		req.Services = append(req.Services, svc)
	}
	return req
}

// declaredName keeps the declared name as the upper-camel-case form;
// schema names are expected to be upper camel case already.
func declaredName(name string) Name {
	return Name{
		Base:               name,
		GeneratedUpperCase: name,
		GeneratedLowerCase: ToLowerCamelCase(name),
	}
}

// leadingTrivia is the comments attached to the file's syntax statement,
// followed by a blank line and the target's banner.
func leadingTrivia(fd *desc.FileDescriptor, t *Target) string {
	var header strings.Builder
	for _, loc := range fd.AsFileDescriptorProto().GetSourceCodeInfo().GetLocation() {
		if !equalPath(loc.GetPath(), syntaxPath) {
			continue
		}
		comments := append([]string{}, loc.GetLeadingDetachedComments()...)
		if loc.LeadingComments != nil {
			comments = append(comments, loc.GetLeadingComments())
		}
		for _, c := range comments {
			header.WriteString(commentLines(c, "//"))
			header.WriteString("\n")
		}
		break
	}
	return header.String() + t.banner(fd.GetName())
}

func equalPath(a, b []int32) bool {
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

// commentLines renders raw comment text as line comments with the given
// prefix. Every line, including the last, ends with a newline.
func commentLines(comment, prefix string) string {
	if comment == "" {
		return ""
	}
	var buf strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(comment, "\n"), "\n") {
		buf.WriteString(prefix)
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return buf.String()
}

func leadingComments(d desc.Descriptor) string {
	return d.GetSourceInfo().GetLeadingComments()
}

// dependencies lists the runtime module, the well-known-types module when a
// method uses a well-known type, mapped modules, and extra imports, in that
// order. A module listed twice keeps its first occurrence. Targets whose
// namer decides imports ignore module mappings and extra imports.
func dependencies(fd *desc.FileDescriptor, opts RequestOptions) []Dependency {
	t := opts.Target
	var deps []Dependency
	seen := map[string]struct{}{}
	add := func(module string, level config.AccessLevel) {
		if module == "" {
			return
		}
		if _, ok := seen[module]; ok {
			return
		}
		seen[module] = struct{}{}
		deps = append(deps, Dependency{Module: module, AccessLevel: level})
	}

	add(t.RuntimeModule, config.AccessLevelInternal)
	if t.WellKnownTypesModule != "" && usesWellKnownTypes(fd) {
		add(t.WellKnownTypesModule, opts.AccessLevel)
	}
	modules := opts.Modules
	if modules == nil || t.namerImports {
		modules, _ = t.Namer.(ModuleMapper)
	}
	if modules != nil {
		for _, mod := range modules.NeededModules(fd) {
			add(mod, opts.AccessLevel)
		}
	}
	if t.namerImports {
		return deps
	}
	extra := append([]string{}, opts.ExtraImports...)
	sort.Strings(extra)
	for _, mod := range extra {
		add(mod, opts.AccessLevel)
	}
	return deps
}

func usesWellKnownTypes(fd *desc.FileDescriptor) bool {
	for _, sd := range fd.GetServices() {
		for _, mtd := range sd.GetMethods() {
			if IsWellKnownFile(mtd.GetInputType().GetFile().GetName()) ||
				IsWellKnownFile(mtd.GetOutputType().GetFile().GetName()) {
				return true
			}
		}
	}
	return false
}
