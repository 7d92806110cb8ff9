package plugins

import (
	"fmt"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"
)

// toProto encodes req the way protoc sends it to a plugin. Every file is
// preceded by its transitive dependencies.
func (req *CodeGenRequest) toProto() *pluginpb.CodeGeneratorRequest {
	reqpb := &pluginpb.CodeGeneratorRequest{
		ProtoFile:       desc.ToFileDescriptorSet(req.Files...).GetFile(),
		CompilerVersion: req.ProtocVersion.toProto(),
	}
	for _, fd := range req.Files {
		reqpb.FileToGenerate = append(reqpb.FileToGenerate, fd.GetName())
	}
	if len(req.Args) > 0 {
		reqpb.Parameter = proto.String(strings.Join(req.Args, ","))
	}
	return reqpb
}

// requestFromProto decodes a request received from protoc.
func requestFromProto(reqpb *pluginpb.CodeGeneratorRequest) (*CodeGenRequest, error) {
	fds, err := desc.CreateFileDescriptors(reqpb.GetProtoFile())
	if err != nil {
		return nil, fmt.Errorf("failed to process input descriptors: %v", err)
	}
	req := &CodeGenRequest{
		ProtocVersion: versionFromProto(reqpb.GetCompilerVersion()),
	}
	for _, name := range reqpb.GetFileToGenerate() {
		fd, ok := fds[name]
		if !ok {
			return nil, fmt.Errorf("file to generate %q not present in request", name)
		}
		req.Files = append(req.Files, fd)
	}
	if reqpb.Parameter != nil {
		req.Args = strings.Split(reqpb.GetParameter(), ",")
	}
	return req, nil
}

func (v ProtocVersion) toProto() *pluginpb.Version {
	if v == (ProtocVersion{}) {
		return nil
	}
	vpb := &pluginpb.Version{
		Major: proto.Int32(int32(v.Major)),
		Minor: proto.Int32(int32(v.Minor)),
		Patch: proto.Int32(int32(v.Patch)),
	}
	if v.Suffix != "" {
		vpb.Suffix = proto.String(v.Suffix)
	}
	return vpb
}

func versionFromProto(vpb *pluginpb.Version) ProtocVersion {
	return ProtocVersion{
		Major:  int(vpb.GetMajor()),
		Minor:  int(vpb.GetMinor()),
		Patch:  int(vpb.GetPatch()),
		Suffix: vpb.GetSuffix(),
	}
}

// toProto encodes everything written to resp. Like ForEach, it consumes
// the response.
func (resp *CodeGenResponse) toProto() (*pluginpb.CodeGeneratorResponse, error) {
	respb := &pluginpb.CodeGeneratorResponse{}
	err := resp.ForEach(func(name, insertionPoint string, contents []byte) error {
		f := &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(name),
			Content: proto.String(string(contents)),
		}
		if insertionPoint != "" {
			f.InsertionPoint = proto.String(insertionPoint)
		}
		respb.File = append(respb.File, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.output.mu.Lock()
	respb.SupportedFeatures = proto.Uint64(resp.output.features)
	resp.output.mu.Unlock()
	return respb, nil
}

// addProto adds the files of a response produced by the named plugin to
// resp. A response that reports an error adds nothing.
func (resp *CodeGenResponse) addProto(plugin string, respb *pluginpb.CodeGeneratorResponse) error {
	if respb.Error != nil {
		return fmt.Errorf("%s: %s", plugin, respb.GetError())
	}
	resp.output.mu.Lock()
	resp.output.features |= respb.GetSupportedFeatures()
	resp.output.mu.Unlock()
	for _, f := range respb.GetFile() {
		resp.output.addSnippet(plugin, f.GetName(), f.GetInsertionPoint(), strings.NewReader(f.GetContent()))
	}
	return nil
}

func errResponse(name string, err error) *pluginpb.CodeGeneratorResponse {
	return &pluginpb.CodeGeneratorResponse{
		Error: proto.String(fmt.Sprintf("%s: %v", name, err)),
	}
}
