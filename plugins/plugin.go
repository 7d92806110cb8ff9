package plugins

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/types/pluginpb"
)

// Plugin is a code generator that generates code during protoc invocations.
// Multiple plugins can be run during the same protoc invocation.
type Plugin func(*CodeGenRequest, *CodeGenResponse) error

// CodeGenRequest represents the arguments to protoc that describe what code
// protoc has been requested to generate.
type CodeGenRequest struct {
	// Args are the parameters for the plugin.
	Args []string
	// Files are the proto source files for which code should be generated.
	Files []*desc.FileDescriptor
	// The version of protoc that has invoked the plugin.
	ProtocVersion ProtocVersion
}

// CodeGenResponse is how the plugin transmits generated code to protoc.
type CodeGenResponse struct {
	pluginName string
	output     *outputMap
}

type outputMap struct {
	mu       sync.Mutex
	files    map[result][]data
	features uint64
}

type result struct {
	name, insertionPoint string
}

type data struct {
	plugin   string
	contents io.Reader
}

func (m *outputMap) addSnippet(pluginName, name, insertionPoint string, contents io.Reader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := result{name: name, insertionPoint: insertionPoint}
	if m.files == nil {
		m.files = map[result][]data{}
	}
	if insertionPoint == "" {
		// can only create one file per name, but can create multiple snippets
		// that will be concatenated together
		if d := m.files[key]; len(d) > 0 {
			panic(fmt.Sprintf("file %s already opened for writing by plugin %s", name, d[0].plugin))
		}
	}
	m.files[key] = append(m.files[key], data{plugin: pluginName, contents: contents})
}

// OutputSnippet returns a writer for creating the snippet to be stored in the
// given file name at the given insertion point. Insertion points are generally
// not used when producing Go code since Go allows multiple files in the same
// package to all contribute to the package's contents. But insertion points can
// be valuable for other languages where certain kinds of language elements must
// appear in particular files or in particular locations within a file.
func (resp *CodeGenResponse) OutputSnippet(name, insertionPoint string) io.Writer {
	var buf bytes.Buffer
	resp.output.addSnippet(resp.pluginName, name, insertionPoint, &buf)
	return &buf
}

// OutputFile returns a writer for creating the file with the given name.
func (resp *CodeGenResponse) OutputFile(name string) io.Writer {
	return resp.OutputSnippet(name, "")
}

// SupportFeatures declares optional protoc features that the plugin
// supports. It may be called more than once; the features accumulate.
func (resp *CodeGenResponse) SupportFeatures(features ...pluginpb.CodeGeneratorResponse_Feature) {
	resp.output.mu.Lock()
	defer resp.output.mu.Unlock()
	for _, f := range features {
		resp.output.features |= uint64(f)
	}
}

// ForEach calls fn for every file and snippet in the response, ordered by
// file name and then by insertion point. Snippets for the same file and
// insertion point are concatenated. Iteration stops at the first error,
// which is returned. The contents are consumed, so a response can only be
// iterated once.
func (resp *CodeGenResponse) ForEach(fn func(name, insertionPoint string, contents []byte) error) error {
	resp.output.mu.Lock()
	defer resp.output.mu.Unlock()

	keys := make([]result, 0, len(resp.output.files))
	for k := range resp.output.files {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].insertionPoint < keys[j].insertionPoint
	})
	for _, k := range keys {
		d := resp.output.files[k]
		readers := make([]io.Reader, len(d))
		for i, r := range d {
			readers[i] = r.contents
		}
		contents, err := io.ReadAll(io.MultiReader(readers...))
		if err != nil {
			return err
		}
		if err := fn(k.name, k.insertionPoint, contents); err != nil {
			return err
		}
	}
	return nil
}

// ProtocVersion represents a version of the protoc tool.
type ProtocVersion struct {
	Major, Minor, Patch int
	Suffix              string
}

func (v ProtocVersion) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix != "" {
		if v.Suffix[0] != '-' {
			buf.WriteRune('-')
		}
		buf.WriteString(v.Suffix)
	}
	return buf.String()
}

// NewCodeGenResponse creates a new response for the named plugin. If other is
// non-nil, files added to the returned response will be contributed to other.
func NewCodeGenResponse(pluginName string, other *CodeGenResponse) *CodeGenResponse {
	var output *outputMap
	if other != nil {
		output = other.output
	} else {
		output = &outputMap{}
	}
	return &CodeGenResponse{
		pluginName: pluginName,
		output:     output,
	}
}
