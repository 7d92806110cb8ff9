package codegen

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/stretchr/testify/require"

	"github.com/jhump/grpcgen/config"
)

const greeterProto = `// Copyright header.

// Second block
// spans two lines.
syntax = "proto3";

package foo.bar_baz;

import "google/protobuf/empty.proto";
import "dep/dep.proto";

message HelloRequest {
  string name = 1;
}

message HelloReply {
  message Inner {}
}

// Greets people.
service Greeter {
  // Says hello.
  rpc SayHello(HelloRequest) returns (HelloReply);
  rpc say_more(stream HelloRequest) returns (stream dep.Thing);
  rpc Ping(google.protobuf.Empty) returns (HelloReply.Inner);
  rpc Collect(stream HelloRequest) returns (HelloReply);
}
`

const depProto = `syntax = "proto3";

package dep;

message Thing {}
`

func parseFiles(t *testing.T, sources map[string]string, names ...string) []*desc.FileDescriptor {
	t.Helper()
	p := protoparse.Parser{
		Accessor:              protoparse.FileContentsFromMap(sources),
		IncludeSourceCodeInfo: true,
	}
	fds, err := p.ParseFiles(names...)
	require.NoError(t, err)
	return fds
}

func greeterFile(t *testing.T) *desc.FileDescriptor {
	return parseFiles(t, map[string]string{
		"greeter.proto": greeterProto,
		"dep/dep.proto": depProto,
	}, "greeter.proto")[0]
}

func TestBuildRequestSwift(t *testing.T) {
	fd := greeterFile(t)
	req := BuildRequest(fd, RequestOptions{
		Target:       SwiftTarget(),
		Modules:      ModuleMappings{"dep/dep.proto": "DepModule"},
		ExtraImports: []string{"Zed", "Alpha", "GRPCProtobuf"},
		AccessLevel:  config.AccessLevelPublic,
	})

	require.Equal(t, "greeter.proto", req.FileName)
	require.Equal(t, []Dependency{
		{Module: "GRPCProtobuf", AccessLevel: config.AccessLevelInternal},
		{Module: "SwiftProtobuf", AccessLevel: config.AccessLevelPublic},
		{Module: "DepModule", AccessLevel: config.AccessLevelPublic},
		{Module: "Alpha", AccessLevel: config.AccessLevelPublic},
		{Module: "Zed", AccessLevel: config.AccessLevelPublic},
	}, req.Dependencies)

	ns := Name{Base: "foo.bar_baz", GeneratedUpperCase: "Foo_BarBaz", GeneratedLowerCase: "foo_barBaz"}
	expected := []ServiceDescriptor{
		{
			Documentation: " Greets people.\n",
			Name:          Name{Base: "Greeter", GeneratedUpperCase: "Greeter", GeneratedLowerCase: "greeter"},
			Namespace:     ns,
			Methods: []MethodDescriptor{
				{
					Documentation: " Says hello.\n",
					Name:          Name{Base: "SayHello", GeneratedUpperCase: "SayHello", GeneratedLowerCase: "sayHello"},
					InputType:     "Foo_BarBaz_HelloRequest",
					OutputType:    "Foo_BarBaz_HelloReply",
				},
				{
					Name:              Name{Base: "say_more", GeneratedUpperCase: "say_more", GeneratedLowerCase: "say_more"},
					IsInputStreaming:  true,
					IsOutputStreaming: true,
					InputType:         "Foo_BarBaz_HelloRequest",
					OutputType:        "Dep_Thing",
				},
				{
					Name:       Name{Base: "Ping", GeneratedUpperCase: "Ping", GeneratedLowerCase: "ping"},
					InputType:  "Google_Protobuf_Empty",
					OutputType: "Foo_BarBaz_HelloReply.Inner",
				},
				{
					Name:             Name{Base: "Collect", GeneratedUpperCase: "Collect", GeneratedLowerCase: "collect"},
					IsInputStreaming: true,
					InputType:        "Foo_BarBaz_HelloRequest",
					OutputType:       "Foo_BarBaz_HelloReply",
				},
			},
		},
	}
	if diff := cmp.Diff(expected, req.Services); diff != "" {
		t.Errorf("unexpected services (-want +got):\n%s", diff)
	}

	require.Equal(t, RPCKindUnary, req.Services[0].Methods[0].Kind())
	require.Equal(t, RPCKindBidiStreaming, req.Services[0].Methods[1].Kind())
	require.Equal(t, RPCKindClientStreaming, req.Services[0].Methods[3].Kind())
	require.Equal(t, "foo.bar_baz.Greeter", req.Services[0].FullyQualifiedName())

	require.Equal(t, "GRPCProtobuf.ProtobufSerializer<Foo_BarBaz_HelloRequest>()", req.LookupSerializer("Foo_BarBaz_HelloRequest"))
	require.Equal(t, "GRPCProtobuf.ProtobufDeserializer<Dep_Thing>()", req.LookupDeserializer("Dep_Thing"))
}

func TestBuildRequestLeadingTrivia(t *testing.T) {
	req := BuildRequest(greeterFile(t), RequestOptions{Target: SwiftTarget()})
	header := "// Copyright header.\n\n// Second block\n// spans two lines.\n\n"
	require.True(t, strings.HasPrefix(req.LeadingTrivia, header), req.LeadingTrivia)
	require.Equal(t, swiftBanner("greeter.proto"), req.LeadingTrivia[len(header):])

	noComments := parseFiles(t, map[string]string{
		"plain.proto": "syntax = \"proto3\";\nmessage M {}\nservice S { rpc R(M) returns (M); }\n",
	}, "plain.proto")[0]
	req = BuildRequest(noComments, RequestOptions{Target: SwiftTarget()})
	require.Equal(t, swiftBanner("plain.proto"), req.LeadingTrivia)
	require.Contains(t, req.LeadingTrivia, "// Source: plain.proto\n")
	require.Equal(t, "S", req.Services[0].FullyQualifiedName())
	require.Equal(t, "M", req.Services[0].Methods[0].InputType)
}

func TestBuildRequestNoWellKnownTypes(t *testing.T) {
	fd := parseFiles(t, map[string]string{
		"a.proto": "syntax = \"proto3\";\npackage a;\nimport \"google/protobuf/empty.proto\";\nmessage M {}\nservice S { rpc R(M) returns (M); }\n",
	}, "a.proto")[0]
	req := BuildRequest(fd, RequestOptions{Target: SwiftTarget()})
	// the import of empty.proto is not used by any method
	require.Equal(t, []Dependency{{Module: "GRPCProtobuf", AccessLevel: config.AccessLevelInternal}}, req.Dependencies)
}

func TestBuildRequestDeterministic(t *testing.T) {
	build := func() ([]byte, []byte) {
		fd := greeterFile(t)
		target := SwiftTarget()
		req := BuildRequest(fd, RequestOptions{
			Target:       target,
			Modules:      ModuleMappings{"dep/dep.proto": "DepModule"},
			ExtraImports: []string{"B", "A"},
		})
		js, err := json.Marshal(req)
		require.NoError(t, err)
		var src bytes.Buffer
		require.NoError(t, Render(&src, req, target, RenderOptions{Servers: true, Clients: true}))
		return js, src.Bytes()
	}
	js1, src1 := build()
	js2, src2 := build()
	require.Equal(t, string(js1), string(js2))
	require.Equal(t, string(src1), string(src2))
}

func TestBuildRequestGo(t *testing.T) {
	fd := parseFiles(t, map[string]string{
		"foo/v1/svc.proto": `syntax = "proto3";
package foo.v1;
option go_package = "example.com/foo/v1;foov1";
import "google/protobuf/empty.proto";
message Req {}
service Svc {
  rpc Unary(Req) returns (google.protobuf.Empty);
  rpc Bidi(stream Req) returns (stream Req);
}
`,
	}, "foo/v1/svc.proto")[0]

	target := GoTarget(nil)
	req := BuildRequest(fd, RequestOptions{Target: target})
	require.Equal(t, []Dependency{
		{Module: "google.golang.org/grpc", AccessLevel: config.AccessLevelInternal},
		{Module: "google.golang.org/protobuf/types/known/emptypb;emptypb", AccessLevel: config.AccessLevelInternal},
	}, req.Dependencies)
	require.Equal(t, "foov1", req.Services[0].Namespace.GeneratedLowerCase)
	require.Equal(t, "Req", req.Services[0].Methods[0].InputType)
	require.Equal(t, "emptypb.Empty", req.Services[0].Methods[0].OutputType)
	require.Equal(t, "proto.Marshal", req.LookupSerializer("Req"))
	require.True(t, strings.HasPrefix(req.LeadingTrivia, "// Code generated by protoc-gen-grpc. DO NOT EDIT.\n"))
}
