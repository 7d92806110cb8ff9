package codegen

import (
	"strings"

	"github.com/jhump/protoreflect/desc"
)

// Namer computes the names that generated code uses for schema elements in a
// particular target language.
type Namer interface {
	// Namespace returns the name of the file's package, in declared form and
	// in the forms generated code uses.
	Namespace(fd *desc.FileDescriptor) Name
	// MessageType returns the name by which code generated for the file from
	// refers to the given message's type.
	MessageType(md *desc.MessageDescriptor, from *desc.FileDescriptor) string
}

// SwiftNamer names elements the way the Swift protobuf runtime's code
// generator does.
type SwiftNamer struct{}

var _ Namer = SwiftNamer{}

// TypePrefix returns the prefix of all types generated for the given file.
// The file's "swift_prefix" option wins if present, even when empty.
func (SwiftNamer) TypePrefix(fd *desc.FileDescriptor) string {
	if opts := fd.GetFileOptions(); opts != nil && opts.SwiftPrefix != nil {
		return opts.GetSwiftPrefix()
	}
	return swiftTypePrefix(fd.GetPackage())
}

func (n SwiftNamer) Namespace(fd *desc.FileDescriptor) Name {
	upper := strings.TrimRight(n.TypePrefix(fd), "_")
	parts := strings.Split(upper, "_")
	for i := range parts {
		parts[i] = ToLowerCamelCase(parts[i])
	}
	return Name{
		Base:               fd.GetPackage(),
		GeneratedUpperCase: upper,
		GeneratedLowerCase: strings.Join(parts, "_"),
	}
}

// MessageType returns the fully-qualified Swift type of md. Swift modules
// share one namespace, so from plays no part.
func (n SwiftNamer) MessageType(md *desc.MessageDescriptor, _ *desc.FileDescriptor) string {
	var names []string
	for d := desc.Descriptor(md); !isFile(d); d = d.GetParent() {
		names = append([]string{sanitizeSwiftTypeName(d.GetName())}, names...)
	}
	return n.TypePrefix(md.GetFile()) + strings.Join(names, ".")
}

// swiftReservedTypeNames are names that would shadow Swift or runtime types if
// used as generated type names.
var swiftReservedTypeNames = map[string]struct{}{
	"Any":        {},
	"Array":      {},
	"Bool":       {},
	"Data":       {},
	"Dictionary": {},
	"Double":     {},
	"Error":      {},
	"Float":      {},
	"Int":        {},
	"Int32":      {},
	"Int64":      {},
	"Message":    {},
	"Optional":   {},
	"Protocol":   {},
	"Self":       {},
	"String":     {},
	"Type":       {},
	"UInt32":     {},
	"UInt64":     {},
}

func sanitizeSwiftTypeName(name string) string {
	if _, ok := swiftReservedTypeNames[name]; ok {
		return name + "Message"
	}
	return name
}

func isFile(d desc.Descriptor) bool {
	_, ok := d.(*desc.FileDescriptor)
	return ok
}
