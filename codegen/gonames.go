package codegen

import (
	"bytes"
	"path"
	"strings"
	"unicode"

	"github.com/jhump/gopoet"
	"github.com/jhump/protoreflect/desc"
)

// GoNamer names elements the way protoc-gen-go does. It also acts as the
// ModuleMapper for Go output, since a file's imports follow directly from
// the Go packages of the messages it references.
//
// GoNamer is not thread-safe.
type GoNamer struct {
	// A user-provided map of proto file names to the Go import path where
	// that file's code is generated, as given by "M<protofile>=<gopkg>"
	// plugin options.
	ImportMap map[string]string

	// cache of file descriptor to Package
	pkgNames map[*desc.FileDescriptor]gopoet.Package
	// imports of the file generated for each file descriptor
	imports map[*desc.FileDescriptor]*gopoet.Imports
}

const goRuntimePackage = "google.golang.org/grpc"

var (
	_ Namer        = (*GoNamer)(nil)
	_ ModuleMapper = (*GoNamer)(nil)
)

// GoPackageForFile returns the Go package for the given file descriptor. This
// uses the file's "go_package" option if it has one, but that can be
// overridden by an entry in n.ImportMap.
func (n *GoNamer) GoPackageForFile(fd *desc.FileDescriptor) gopoet.Package {
	if pkg, ok := n.pkgNames[fd]; ok {
		return pkg
	}

	goPackage, ok := n.ImportMap[fd.GetName()]
	if !ok {
		goPackage = fd.GetFileOptions().GetGoPackage()
	}

	fileName, protoPackage := fd.GetName(), fd.GetPackage()
	var pkgPath, pkgName string
	if goPackage == "" {
		pkgPath = path.Dir(fileName)
		if protoPackage == "" {
			n := path.Base(fileName)
			ext := path.Ext(n)
			if ext == "" || len(ext) == len(n) {
				pkgName = n
			} else {
				pkgName = n[:len(n)-len(ext)]
			}
		} else {
			pkgName = protoPackage
		}
	} else {
		parts := strings.Split(goPackage, ";")
		if len(parts) > 1 {
			pkgPath = parts[0]
			pkgName = parts[1]
		} else {
			pkgName = path.Base(parts[0])
			if strings.Contains(parts[0], "/") {
				pkgPath = parts[0]
			} else {
				pkgPath = path.Dir(fileName)
			}
		}
	}
	pkgName = sanitizeGoName(pkgName)

	pkg := gopoet.Package{ImportPath: pkgPath, Name: pkgName}
	if n.pkgNames == nil {
		n.pkgNames = map[*desc.FileDescriptor]gopoet.Package{}
	}
	n.pkgNames[fd] = pkg
	return pkg
}

func sanitizeGoName(name string) string {
	var buf bytes.Buffer
	for i, ch := range name {
		switch {
		case unicode.IsDigit(ch):
			if i == 0 {
				buf.WriteRune('_')
			}
			buf.WriteRune(ch)
		case unicode.IsLetter(ch):
			buf.WriteRune(ch)
		default:
			buf.WriteRune('_')
		}
	}
	return buf.String()
}

func (n *GoNamer) Namespace(fd *desc.FileDescriptor) Name {
	pkg := n.GoPackageForFile(fd)
	return Name{
		Base:               fd.GetPackage(),
		GeneratedUpperCase: strings.TrimRight(CamelCase(pkg.Name), "_"),
		GeneratedLowerCase: strings.TrimRight(pkg.Name, "_"),
	}
}

// MessageType returns the Go type name of md, qualified with the name its
// package is imported under in the code generated for from. The package is
// unqualified when md is generated into the same package as from.
func (n *GoNamer) MessageType(md *desc.MessageDescriptor, from *desc.FileDescriptor) string {
	return n.importsFor(from).EnsureImported(n.goSymbolFor(md)).String()
}

// importsFor returns the imports of the code generated for fd. The runtime
// packages are registered first so that their names are never taken by a
// message package.
func (n *GoNamer) importsFor(fd *desc.FileDescriptor) *gopoet.Imports {
	if imps, ok := n.imports[fd]; ok {
		return imps
	}
	imps := gopoet.NewImportsFor(n.GoPackageForFile(fd).ImportPath)
	imps.RegisterImport("context", "context")
	imps.RegisterImport(goRuntimePackage, "grpc")
	if n.imports == nil {
		n.imports = map[*desc.FileDescriptor]*gopoet.Imports{}
	}
	n.imports[fd] = imps
	return imps
}

func (n *GoNamer) goSymbolFor(d desc.Descriptor) gopoet.Symbol {
	var s []string
	for parent := d; !isFile(parent); parent = parent.GetParent() {
		s = append([]string{parent.GetName()}, s...)
	}
	return n.GoPackageForFile(d.GetFile()).Symbol(CamelCase(strings.Join(s, "_")))
}

// NeededModules returns the Go packages that hold the request and response
// types of fd's methods, other than fd's own package and the runtime
// packages. Each is reported as "<import path>;<name>", where name is the
// one the package is imported under, so packages that share a name get
// distinct aliases.
func (n *GoNamer) NeededModules(fd *desc.FileDescriptor) []string {
	imps := n.importsFor(fd)
	for _, sd := range fd.GetServices() {
		for _, mtd := range sd.GetMethods() {
			n.MessageType(mtd.GetInputType(), fd)
			n.MessageType(mtd.GetOutputType(), fd)
		}
	}
	var mods []string
	for _, spec := range imps.ImportSpecs() {
		if spec.ImportPath == "context" || spec.ImportPath == goRuntimePackage {
			continue
		}
		name := strings.TrimSuffix(imps.PrefixForPackage(spec.ImportPath), ".")
		mods = append(mods, spec.ImportPath+";"+name)
	}
	return mods
}

// CamelCase converts the given symbol to an exported Go symbol in camel-case
// convention. It removes underscores and makes letters following an underscore
// upper-case. If the given symbol starts with an underscore, the underscore is
// replaced with a capital "X".
func CamelCase(s string) string {
	if s == "" {
		return ""
	}
	t := make([]byte, 0, 32)
	i := 0
	if s[0] == '_' {
		// Need a capital letter; drop the '_'.
		t = append(t, 'X')
		i++
	}
	// Invariant: if the next letter is lower case, it must be converted
	// to upper case.
	// That is, we process a word at a time, where words are marked by _ or
	// upper case letter. Digits are treated as words.
	for ; i < len(s); i++ {
		c := s[i]
		if c == '_' && i+1 < len(s) && isASCIILower(s[i+1]) {
			continue // Skip the underscore in s.
		}
		if isASCIIDigit(c) {
			t = append(t, c)
			continue
		}
		if isASCIILower(c) {
			c ^= ' ' // Make it a capital letter.
		}
		t = append(t, c)
		// Accept lower case sequence that follows.
		for i+1 < len(s) && isASCIILower(s[i+1]) {
			i++
			t = append(t, s[i])
		}
	}
	return string(t)
}

func isASCIILower(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
