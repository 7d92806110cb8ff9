package plugins

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jhump/protoreflect/desc"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"
)

// scriptPlugin writes a plugin executable that saves its request to
// req.bin and replies with respb.
func scriptPlugin(t *testing.T, respb *pluginpb.CodeGeneratorResponse, extra string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	dir := t.TempDir()
	out, err := proto.Marshal(respb)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resp.bin"), out, 0644))
	reqFile := filepath.Join(dir, "req.bin")
	script := "#!/bin/sh\ncat > " + reqFile + "\n" + extra + "cat " + filepath.Join(dir, "resp.bin") + "\n"
	path := filepath.Join(dir, "protoc-gen-fake")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path, reqFile
}

func TestExec(t *testing.T) {
	dep, fd := testFiles(t)
	path, reqFile := scriptPlugin(t, &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)),
		File: []*pluginpb.CodeGeneratorResponse_File{
			{Name: proto.String("svc.txt"), Content: proto.String("generated\n")},
			{Name: proto.String("svc.txt"), InsertionPoint: proto.String("extra"), Content: proto.String("more\n")},
		},
	}, "")

	resp := NewCodeGenResponse("main", nil)
	req := &CodeGenRequest{
		Args:          []string{"a=b", "c"},
		Files:         []*desc.FileDescriptor{fd},
		ProtocVersion: ProtocVersion{Major: 4, Minor: 1},
	}
	require.NoError(t, Exec(context.Background(), path, req, resp))

	sent, err := os.ReadFile(reqFile)
	require.NoError(t, err)
	var reqpb pluginpb.CodeGeneratorRequest
	require.NoError(t, proto.Unmarshal(sent, &reqpb))
	require.Equal(t, []string{"svc.proto"}, reqpb.GetFileToGenerate())
	require.Equal(t, "a=b,c", reqpb.GetParameter())
	require.Equal(t, int32(4), reqpb.GetCompilerVersion().GetMajor())
	require.Len(t, reqpb.GetProtoFile(), 2)
	require.Equal(t, dep.GetName(), reqpb.GetProtoFile()[0].GetName())
	require.Equal(t, fd.GetName(), reqpb.GetProtoFile()[1].GetName())

	var got []string
	require.NoError(t, resp.ForEach(func(name, insertionPoint string, contents []byte) error {
		got = append(got, name+"@"+insertionPoint+"="+string(contents))
		return nil
	}))
	require.Equal(t, []string{"svc.txt@=generated\n", "svc.txt@extra=more\n"}, got)
	require.Equal(t, uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL), resp.output.features)
}

func TestExecErrors(t *testing.T) {
	_, fd := testFiles(t)
	req := &CodeGenRequest{Files: []*desc.FileDescriptor{fd}}

	err := Exec(context.Background(), "protoc-gen-fake", &CodeGenRequest{}, NewCodeGenResponse("main", nil))
	require.EqualError(t, err, "nothing to generate: no files given")

	path, _ := scriptPlugin(t, &pluginpb.CodeGeneratorResponse{Error: proto.String("cannot do that")}, "")
	err = Exec(context.Background(), path, req, NewCodeGenResponse("main", nil))
	require.EqualError(t, err, "fake: cannot do that")

	path, _ = scriptPlugin(t, &pluginpb.CodeGeneratorResponse{}, "echo 'it broke' >&2\nexit 3\n")
	err = Exec(context.Background(), path, req, NewCodeGenResponse("main", nil))
	require.EqualError(t, err, "fake: exit status 3: it broke")
}

func TestPluginName(t *testing.T) {
	testCases := map[string]string{
		"protoc-gen-grpc":               "grpc",
		"/usr/bin/protoc-gen-swift":     "swift",
		"bin/protoc-gen-grpc-swift.exe": "grpc-swift",
		"custom":                        "custom",
	}
	for in, expected := range testCases {
		require.Equal(t, expected, pluginName(in), in)
	}
}
