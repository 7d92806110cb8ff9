// Command protocgen generates message and gRPC service code from protocol
// buffer schema files by running protoc with the messages and services
// plugins.
//
// The generate subcommand takes the options and schema files on the command
// line:
//
//	protocgen generate --access-level=public -I protos protos/foo/service.proto
//
// The build subcommand instead finds every schema file in a source tree and
// configures each one with the nearest grpc-proto-generator-config.json (or
// .yaml) file in its directory or a parent directory:
//
//	protocgen build ./Sources
//
// A config file looks like this, and every key is optional:
//
//	{
//	  "generate": {"servers": true, "clients": true, "messages": true},
//	  "generatedSource": {
//	    "accessLevel": "internal",
//	    "accessLevelOnImports": false,
//	    "protoPathModuleMappings": "module-mappings.yaml",
//	    "extraModuleImports": []
//	  },
//	  "protoc": {"importPaths": ["."], "executablePath": "/usr/local/bin/protoc"}
//	}
//
// When no protoc path is configured, protoc is looked for next to this
// program, then on the PATH, and then at the location named by the
// PROTOC_PATH environment variable.
//
// The inspect subcommand parses schema files and prints the requests that
// the services plugin builds from them, or the code it generates.
package main

import "github.com/jhump/grpcgen/app/protocgen"

func main() {
	protocgen.Main()
}
