package codegen

import (
	"errors"
	"go/format"
	"path"
	"strconv"
	"strings"
)

func formatGo(src []byte) ([]byte, error) {
	return format.Source(src)
}

// splitGoModule splits a module in go_package form into import path and
// package name.
func splitGoModule(module string) (importPath, name string) {
	if i := strings.IndexByte(module, ';'); i >= 0 {
		return module[:i], module[i+1:]
	}
	return module, path.Base(module)
}

func renderGo(p *printer, req *GenerationRequest, opts RenderOptions) error {
	if len(req.Services) == 0 {
		return errors.New("no services to generate")
	}
	p.Raw(req.LeadingTrivia)
	p.P("package %s", req.Services[0].Namespace.GeneratedLowerCase)
	p.P("")

	needContext := opts.Clients
	if opts.Servers && !needContext {
	outer:
		for _, svc := range req.Services {
			for _, m := range svc.Methods {
				if m.Kind() == RPCKindUnary {
					needContext = true
					break outer
				}
			}
		}
	}
	p.P("import (")
	p.In()
	if needContext {
		p.P(`"context"`)
		p.P("")
	}
	for i, dep := range req.Dependencies {
		// imports of message packages are only referenced by interface methods
		if i > 0 && !opts.Servers && !opts.Clients {
			break
		}
		importPath, name := splitGoModule(dep.Module)
		p.P("%s %s", name, strconv.Quote(importPath))
	}
	p.Out()
	p.P(")")
	p.P("")
	p.P("// This is a compile-time assertion to ensure that this generated file")
	p.P("// is compatible with the grpc package it is being compiled against.")
	p.P("const _ = grpc.SupportPackageIsVersion9")

	for i := range req.Services {
		svc := &req.Services[i]
		goService(p, svc, opts)
	}
	return nil
}

func goService(p *printer, svc *ServiceDescriptor, opts RenderOptions) {
	name := CamelCase(svc.Name.Base)
	fqn := svc.FullyQualifiedName()

	p.P("")
	p.P("const (")
	p.In()
	for _, m := range svc.Methods {
		p.P("%s_%s_FullMethodName = %q", name, CamelCase(m.Name.Base), "/"+fqn+"/"+m.Name.Base)
	}
	p.Out()
	p.P(")")

	if opts.Clients {
		p.P("")
		p.P("// %sClient is the client API for the %s service.", name, fqn)
		p.Doc(svc.Documentation, "//")
		p.P("type %sClient interface {", name)
		p.In()
		for _, m := range svc.Methods {
			p.Doc(m.Documentation, "//")
			mname := CamelCase(m.Name.Base)
			switch m.Kind() {
			case RPCKindUnary:
				p.P("%s(ctx context.Context, in *%s, opts ...grpc.CallOption) (*%s, error)", mname, m.InputType, m.OutputType)
			case RPCKindServerStreaming:
				p.P("%s(ctx context.Context, in *%s, opts ...grpc.CallOption) (grpc.ServerStreamingClient[%s], error)", mname, m.InputType, m.OutputType)
			case RPCKindClientStreaming:
				p.P("%s(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[%s, %s], error)", mname, m.InputType, m.OutputType)
			case RPCKindBidiStreaming:
				p.P("%s(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[%s, %s], error)", mname, m.InputType, m.OutputType)
			}
		}
		p.Out()
		p.P("}")
	}

	if opts.Servers {
		p.P("")
		p.P("// %sServer is the server API for the %s service.", name, fqn)
		p.Doc(svc.Documentation, "//")
		p.P("type %sServer interface {", name)
		p.In()
		for _, m := range svc.Methods {
			p.Doc(m.Documentation, "//")
			mname := CamelCase(m.Name.Base)
			switch m.Kind() {
			case RPCKindUnary:
				p.P("%s(context.Context, *%s) (*%s, error)", mname, m.InputType, m.OutputType)
			case RPCKindServerStreaming:
				p.P("%s(*%s, grpc.ServerStreamingServer[%s]) error", mname, m.InputType, m.OutputType)
			case RPCKindClientStreaming:
				p.P("%s(grpc.ClientStreamingServer[%s, %s]) error", mname, m.InputType, m.OutputType)
			case RPCKindBidiStreaming:
				p.P("%s(grpc.BidiStreamingServer[%s, %s]) error", mname, m.InputType, m.OutputType)
			}
		}
		p.Out()
		p.P("}")
	}
}
