// Command protoc-gen-grpc is a protoc plugin that generates gRPC service
// code: service metadata, server protocols, and clients. Swift is generated
// by default. Pass "Target=go" to generate Go instead:
//
//	protoc --plugin=protoc-gen-grpc-swift=protoc-gen-grpc --grpc-swift_out=. foo.proto
//	protoc --grpc_out=. --grpc_opt=Target=go,Client=false foo.proto
//
// The supported parameters are Visibility, Server, Client, FileNaming,
// UseAccessLevelOnImports, ProtoPathModuleMappings, ExtraModuleImports, and
// Target. For the Go target, "M<file>=<package>" parameters override the Go
// package of a schema file.
package main

import (
	"github.com/jhump/grpcgen/codegen"
	"github.com/jhump/grpcgen/plugins"
)

func main() {
	plugins.PluginMain(codegen.Generate)
}
