package codegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhump/grpcgen/config"
	"github.com/jhump/grpcgen/plugins"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultOptions(), opts)

	opts, err = ParseOptions([]string{
		"Visibility=Public",
		"Server=false",
		"Client=TRUE",
		"FileNaming=DropPath",
		"UseAccessLevelOnImports=true",
		"ProtoPathModuleMappings=/tmp/m.yaml",
		"ExtraModuleImports=Foo",
		"ExtraModuleImports=Bar",
		"Target=go",
		"Mfoo/bar.proto=example.com/foo",
		"",
	})
	require.NoError(t, err)
	require.Equal(t, Options{
		Target:               TargetGo,
		AccessLevel:          config.AccessLevelPublic,
		Servers:              false,
		Clients:              true,
		FileNaming:           config.FileNamingDropPath,
		AccessLevelOnImports: true,
		ModuleMappingsPath:   "/tmp/m.yaml",
		ExtraImports:         []string{"Foo", "Bar"},
		ImportMap:            map[string]string{"foo/bar.proto": "example.com/foo"},
	}, opts)

	for _, args := range [][]string{
		{"Bogus=1"},
		{"Server"},
		{"Server=yes"},
		{"Visibility=private"},
		{"FileNaming=fullpath"},
	} {
		_, err := ParseOptions(args)
		require.Error(t, err, "%v", args)
	}
}

func TestGenerate(t *testing.T) {
	fds := parseFiles(t, map[string]string{
		"protos/greeter.proto": strings.Replace(greeterProto, `import "dep/dep.proto";`, `import "protos/dep.proto";`, 1),
		"protos/dep.proto":     depProto,
	}, "protos/greeter.proto", "protos/dep.proto")

	mappingsPath := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(mappingsPath, []byte("mapping:\n  - module_name: DepModule\n    proto_file_path: [protos/dep.proto]\n"), 0644))

	testCases := []struct {
		naming       string
		expectedName string
	}{
		{"FullPath", "protos/greeter.grpc.swift"},
		{"PathToUnderscores", "protos_greeter.grpc.swift"},
		{"DropPath", "greeter.grpc.swift"},
	}
	for _, tc := range testCases {
		t.Run(tc.naming, func(t *testing.T) {
			req := &plugins.CodeGenRequest{
				Files: fds,
				Args: []string{
					"Visibility=Public",
					"FileNaming=" + tc.naming,
					"ProtoPathModuleMappings=" + mappingsPath,
				},
			}
			resp, err := plugins.Run(PluginName, Generate, req)
			require.NoError(t, err)

			var names []string
			var contents string
			require.NoError(t, resp.ForEach(func(name, insertionPoint string, data []byte) error {
				require.Empty(t, insertionPoint)
				names = append(names, name)
				contents = string(data)
				return nil
			}))
			// dep.proto has no services
			require.Equal(t, []string{tc.expectedName}, names)
			require.Contains(t, contents, "public enum Foo_BarBaz_Greeter {\n")
			require.Contains(t, contents, "\nimport DepModule\n")
		})
	}
}

func TestGenerateGo(t *testing.T) {
	fds := parseFiles(t, map[string]string{
		"svc.proto": "syntax = \"proto3\";\npackage svc;\nmessage M {}\nservice S { rpc R(M) returns (M); }\n",
	}, "svc.proto")
	resp, err := plugins.Run(PluginName, Generate, &plugins.CodeGenRequest{
		Files: fds,
		Args:  []string{"Target=go", "Msvc.proto=example.com/svc;svcpb", "Client=false"},
	})
	require.NoError(t, err)
	var names []string
	var contents string
	require.NoError(t, resp.ForEach(func(name, _ string, data []byte) error {
		names = append(names, name)
		contents = string(data)
		return nil
	}))
	require.Equal(t, []string{"svc_grpc.pb.go"}, names)
	require.Contains(t, contents, "package svcpb\n")
	require.Contains(t, contents, "type SServer interface {\n")
	require.NotContains(t, contents, "SClient")
}

func TestGenerateBadOptions(t *testing.T) {
	fds := parseFiles(t, map[string]string{
		"svc.proto": "syntax = \"proto3\";\nmessage M {}\nservice S { rpc R(M) returns (M); }\n",
	}, "svc.proto")
	_, err := plugins.Run(PluginName, Generate, &plugins.CodeGenRequest{Files: fds, Args: []string{"Target=cobol"}})
	require.ErrorContains(t, err, `unknown target "cobol"`)

	_, err = plugins.Run(PluginName, Generate, &plugins.CodeGenRequest{Files: fds, Args: []string{"ProtoPathModuleMappings=/does/not/exist"}})
	require.Error(t, err)

	_, err = plugins.Run(PluginName, Generate, &plugins.CodeGenRequest{Files: fds, Args: []string{"Target=go", "ExtraModuleImports=foo"}})
	require.ErrorContains(t, err, "target go does not support extra module imports")
}

func TestPluginRegistered(t *testing.T) {
	p, ok := plugins.LookupPlugin(PluginName)
	require.True(t, ok)
	require.NotNil(t, p)
	require.Contains(t, plugins.RegisteredPluginNames(), PluginName)
}
