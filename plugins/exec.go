package plugins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"
)

// Exec runs the plugin executable at pluginPath with req, and adds the
// files it generates to resp. If the plugin fails, the returned error
// includes what it wrote to stderr.
func Exec(ctx context.Context, pluginPath string, req *CodeGenRequest, resp *CodeGenResponse) error {
	if len(req.Files) == 0 {
		return errors.New("nothing to generate: no files given")
	}
	name := pluginName(pluginPath)
	in, err := proto.Marshal(req.toProto())
	if err != nil {
		return fmt.Errorf("%s: failed to encode code gen request: %v", name, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, pluginPath)
	cmd.Stdin = bytes.NewReader(in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %v: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %v", name, err)
	}

	var respb pluginpb.CodeGeneratorResponse
	if err := proto.Unmarshal(stdout.Bytes(), &respb); err != nil {
		return fmt.Errorf("%s: failed to decode code gen response: %v", name, err)
	}
	return resp.addProto(name, &respb)
}

// PluginMain runs plugin as the main function of a protoc plugin
// executable, and exits.
func PluginMain(plugin Plugin) {
	output := os.Stdout
	// only the response may go to stdout
	os.Stdout = os.Stderr

	if err := RunPlugin(os.Args[0], plugin, os.Stdin, output); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// RunPlugin reads a request from in, runs plugin, and writes the response to
// out. Failures of the plugin, and malformed requests, are reported in the
// response, prefixed with the plugin's name. An error is returned only if
// the response cannot be written.
func RunPlugin(name string, plugin Plugin, in io.Reader, out io.Writer) error {
	name = pluginName(name)
	respb := handleRequest(name, plugin, in)
	b, err := proto.Marshal(respb)
	if err != nil {
		if b, err = proto.Marshal(errResponse(name, fmt.Errorf("failed to write code gen response: %v", err))); err != nil {
			return err
		}
	}
	_, err = out.Write(b)
	return err
}

func handleRequest(name string, plugin Plugin, in io.Reader) *pluginpb.CodeGeneratorResponse {
	reqBytes, err := io.ReadAll(in)
	if err != nil {
		return errResponse(name, fmt.Errorf("failed to read code gen request: %v", err))
	}
	var reqpb pluginpb.CodeGeneratorRequest
	if err := proto.Unmarshal(reqBytes, &reqpb); err != nil {
		return errResponse(name, fmt.Errorf("failed to read code gen request: %v", err))
	}
	req, err := requestFromProto(&reqpb)
	if err != nil {
		return errResponse(name, err)
	}
	resp := NewCodeGenResponse(name, nil)
	if err := plugin(req, resp); err != nil {
		return errResponse(name, err)
	}
	respb, err := resp.toProto()
	if err != nil {
		return errResponse(name, fmt.Errorf("failed to process code gen response: %v", err))
	}
	return respb
}

// pluginName is the name protoc knows a plugin executable by: its file
// name without the "protoc-gen-" prefix.
func pluginName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".exe")
	return strings.TrimPrefix(name, "protoc-gen-")
}
