package codegen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhump/grpcgen/config"
)

func renderGreeter(t *testing.T, opts RenderOptions) string {
	t.Helper()
	target := SwiftTarget()
	req := BuildRequest(greeterFile(t), RequestOptions{
		Target:      target,
		Modules:     ModuleMappings{"dep/dep.proto": "DepModule"},
		AccessLevel: opts.AccessLevel,
	})
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, req, target, opts))
	return buf.String()
}

func TestRenderSwift(t *testing.T) {
	src := renderGreeter(t, RenderOptions{
		AccessLevel: config.AccessLevelInternal,
		Servers:     true,
		Clients:     true,
	})

	require.True(t, strings.HasPrefix(src, "// Copyright header.\n"))
	require.Contains(t, src, "// swift-format-ignore-file\n")
	require.Contains(t, src, "\nimport GRPCCore\nimport GRPCProtobuf\nimport SwiftProtobuf\nimport DepModule\n")
	require.Contains(t, src, "internal enum Foo_BarBaz_Greeter {\n")
	require.Contains(t, src, `internal static let descriptor = GRPCCore.ServiceDescriptor(fullyQualifiedService: "foo.bar_baz.Greeter")`)
	require.Contains(t, src, `internal static let foo_barBaz_greeter = GRPCCore.ServiceDescriptor(fullyQualifiedService: "foo.bar_baz.Greeter")`)
	require.Contains(t, src, "internal enum say_more {\n")
	require.Contains(t, src, `method: "say_more"`)
	require.Contains(t, src, "internal typealias Output = Foo_BarBaz_HelloReply.Inner\n")

	// server
	require.Contains(t, src, "internal protocol StreamingServiceProtocol: GRPCCore.RegistrableRPCService {\n")
	require.Contains(t, src, "    /// Greets people.\n")
	require.Contains(t, src, "        /// Says hello.\n")
	require.Contains(t, src, "forMethod: Foo_BarBaz_Greeter.Method.SayHello.descriptor,\n")
	require.Contains(t, src, "deserializer: GRPCProtobuf.ProtobufDeserializer<Foo_BarBaz_HelloRequest>(),\n")
	require.Contains(t, src, "serializer: GRPCProtobuf.ProtobufSerializer<Dep_Thing>(),\n")

	// client
	require.Contains(t, src, "internal protocol ClientProtocol: Sendable {\n")
	require.Contains(t, src, "internal struct Client<Transport>: ClientProtocol where Transport: GRPCCore.ClientTransport {\n")
	require.Contains(t, src, "try await self.client.bidirectionalStreaming(\n")
	require.Contains(t, src, "try await self.client.clientStreaming(\n")
	require.Contains(t, src, "request: GRPCCore.StreamingClientRequest<Foo_BarBaz_HelloRequest>,\n")
	require.Contains(t, src, "onResponse handleResponse: @Sendable @escaping (GRPCCore.StreamingClientResponse<Dep_Thing>) async throws -> Result\n")
	require.Contains(t, src, "options: GRPCCore.CallOptions = .defaults,\n")
}

func TestRenderSwiftToggles(t *testing.T) {
	src := renderGreeter(t, RenderOptions{AccessLevel: config.AccessLevelPublic})
	require.Contains(t, src, "public enum Foo_BarBaz_Greeter {\n")
	require.NotContains(t, src, "StreamingServiceProtocol")
	require.NotContains(t, src, "ClientProtocol")

	src = renderGreeter(t, RenderOptions{AccessLevel: config.AccessLevelPublic, Clients: true})
	require.NotContains(t, src, "StreamingServiceProtocol")
	require.Contains(t, src, "public protocol ClientProtocol: Sendable {\n")
}

func TestRenderSwiftAccessLevelOnImports(t *testing.T) {
	src := renderGreeter(t, RenderOptions{
		AccessLevel:          config.AccessLevelPackage,
		AccessLevelOnImports: true,
	})
	require.Contains(t, src, "\npackage import GRPCCore\ninternal import GRPCProtobuf\npackage import SwiftProtobuf\npackage import DepModule\n")
}

func TestRenderGo(t *testing.T) {
	fd := parseFiles(t, map[string]string{
		"foo/v1/svc.proto": `syntax = "proto3";
package foo.v1;
option go_package = "example.com/foo/v1;foov1";
import "google/protobuf/empty.proto";
message Req {}
// Does things.
service Svc {
  // A simple call.
  rpc Unary(Req) returns (google.protobuf.Empty);
  rpc Bidi(stream Req) returns (stream Req);
  rpc Download(Req) returns (stream Req);
  rpc Upload(stream Req) returns (Req);
}
`,
	}, "foo/v1/svc.proto")[0]
	target := GoTarget(nil)
	req := BuildRequest(fd, RequestOptions{Target: target})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, req, target, RenderOptions{Servers: true, Clients: true}))
	src := buf.String()

	require.True(t, strings.HasPrefix(src, "// Code generated by protoc-gen-grpc. DO NOT EDIT.\n// source: foo/v1/svc.proto\n\npackage foov1\n"), src)
	require.Contains(t, src, `emptypb "google.golang.org/protobuf/types/known/emptypb"`)
	require.Contains(t, src, `"/foo.v1.Svc/Unary"`)
	require.Contains(t, src, "type SvcClient interface {\n")
	require.Contains(t, src, "\tUnary(ctx context.Context, in *Req, opts ...grpc.CallOption) (*emptypb.Empty, error)\n")
	require.Contains(t, src, "\tBidi(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[Req, Req], error)\n")
	require.Contains(t, src, "type SvcServer interface {\n")
	require.Contains(t, src, "\t// A simple call.\n")
	require.Contains(t, src, "\tUnary(context.Context, *Req) (*emptypb.Empty, error)\n")
	require.Contains(t, src, "\tDownload(*Req, grpc.ServerStreamingServer[Req]) error\n")
	require.Contains(t, src, "\tUpload(grpc.ClientStreamingServer[Req, Req]) error\n")

	buf.Reset()
	require.NoError(t, Render(&buf, req, target, RenderOptions{}))
	src = buf.String()
	require.NotContains(t, src, "emptypb")
	require.NotContains(t, src, `"context"`)
	require.NotContains(t, src, "SvcServer")
}

func TestRenderGoNoServices(t *testing.T) {
	target := GoTarget(nil)
	err := Render(&bytes.Buffer{}, &GenerationRequest{FileName: "x.proto"}, target, RenderOptions{})
	require.Error(t, err)
}

// noImports fails every import, so type checking reports only the errors
// that do not depend on the contents of imported packages.
type noImports struct{}

func (noImports) Import(path string) (*types.Package, error) {
	return nil, errors.New("imports not available")
}

// typeCheck reports the problems in src other than unresolved imports.
func typeCheck(t *testing.T, src string) []string {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "gen.go", src, 0)
	require.NoError(t, err)
	var problems []string
	conf := types.Config{
		Importer: noImports{},
		Error: func(err error) {
			if !strings.Contains(err.Error(), "could not import") {
				problems = append(problems, err.Error())
			}
		},
	}
	_, _ = conf.Check("gen", fset, []*ast.File{f}, nil)
	return problems
}

func TestRenderGoImports(t *testing.T) {
	fd := parseFiles(t, map[string]string{
		"a/v1/a.proto": `syntax = "proto3";
package a.v1;
option go_package = "example.com/a/v1";
message Thing {}
`,
		"b/v1/b.proto": `syntax = "proto3";
package b.v1;
option go_package = "example.com/b/v1";
message Thing {}
`,
		"grpc/grpc.proto": `syntax = "proto3";
package grpc;
option go_package = "example.com/grpc";
message Call {}
`,
		"svc.proto": `syntax = "proto3";
package svc;
option go_package = "example.com/svc";
import "a/v1/a.proto";
import "b/v1/b.proto";
import "grpc/grpc.proto";
message Local {}
service Svc {
  rpc Convert(a.v1.Thing) returns (b.v1.Thing);
  rpc Watch(Local) returns (stream grpc.Call);
}
`,
	}, "svc.proto")[0]
	target := GoTarget(nil)
	req := BuildRequest(fd, RequestOptions{
		Target:       target,
		Modules:      ModuleMappings{"a/v1/a.proto": "Unused"},
		ExtraImports: []string{"example.com/extra"},
	})
	var mods []string
	for _, dep := range req.Dependencies {
		mods = append(mods, dep.Module)
	}
	require.Equal(t, []string{
		"google.golang.org/grpc",
		"example.com/a/v1;v1",
		"example.com/b/v1;v11",
		"example.com/grpc;grpc1",
	}, mods)

	for _, opts := range []RenderOptions{
		{Servers: true, Clients: true},
		{Servers: true},
		{Clients: true},
		{},
	} {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, req, target, opts))
		src := buf.String()
		require.Empty(t, typeCheck(t, src), src)
		if opts.Clients {
			require.Contains(t, src, "\tConvert(ctx context.Context, in *v1.Thing, opts ...grpc.CallOption) (*v11.Thing, error)\n")
			require.Contains(t, src, "(grpc.ServerStreamingClient[grpc1.Call], error)\n")
		}
	}
}

func TestRequestOptionsValidate(t *testing.T) {
	require.NoError(t, RequestOptions{
		Target:       SwiftTarget(),
		Modules:      ModuleMappings{},
		ExtraImports: []string{"Foo"},
	}.Validate())
	require.NoError(t, RequestOptions{Target: GoTarget(nil)}.Validate())
	require.EqualError(t, RequestOptions{Target: GoTarget(nil), ExtraImports: []string{"foo"}}.Validate(),
		"target go does not support extra module imports")
	require.EqualError(t, RequestOptions{Target: GoTarget(nil), Modules: ModuleMappings{}}.Validate(),
		"target go does not support module mappings")
}
