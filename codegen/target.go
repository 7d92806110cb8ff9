package codegen

import (
	"fmt"
)

// Target describes a language that service code can be generated for.
type Target struct {
	// Name of the target, as given in the "Target" plugin option.
	Name string
	// Module holding the runtime support code for generated services.
	RuntimeModule string
	// Module holding the generated types of the well-known schema files, or
	// empty if those are handled like any other dependency.
	WellKnownTypesModule string
	// Extension that replaces ".proto" in the names of generated service
	// files.
	ServicesExtension string
	Namer             Namer

	banner       func(source string) string
	serializer   func(messageType string) string
	deserializer func(messageType string) string
	render       func(p *printer, req *GenerationRequest, opts RenderOptions) error
	format       func(src []byte) ([]byte, error)
	indent       string
	// imports follow from the names the namer hands out
	namerImports bool
}

const (
	TargetSwift = "swift"
	TargetGo    = "go"
)

// SwiftTarget returns the target for Swift code using the gRPC Swift
// runtime.
func SwiftTarget() *Target {
	return &Target{
		Name:                 TargetSwift,
		RuntimeModule:        "GRPCProtobuf",
		WellKnownTypesModule: "SwiftProtobuf",
		ServicesExtension:    ".grpc.swift",
		Namer:                SwiftNamer{},
		banner:               swiftBanner,
		serializer: func(messageType string) string {
			return fmt.Sprintf("GRPCProtobuf.ProtobufSerializer<%s>()", messageType)
		},
		deserializer: func(messageType string) string {
			return fmt.Sprintf("GRPCProtobuf.ProtobufDeserializer<%s>()", messageType)
		},
		render: renderSwift,
		indent: "    ",
	}
}

// GoTarget returns the target for Go code using the grpc-go runtime.
// importMap overrides the Go package of individual schema files.
func GoTarget(importMap map[string]string) *Target {
	return &Target{
		Name:              TargetGo,
		RuntimeModule:     goRuntimePackage,
		ServicesExtension: "_grpc.pb.go",
		Namer:             &GoNamer{ImportMap: importMap},
		banner:            goBanner,
		serializer: func(string) string {
			return "proto.Marshal"
		},
		deserializer: func(string) string {
			return "proto.Unmarshal"
		},
		render:       renderGo,
		format:       formatGo,
		indent:       "\t",
		namerImports: true,
	}
}

// NewTarget returns the target with the given name. An empty name selects
// Swift.
func NewTarget(name string, importMap map[string]string) (*Target, error) {
	switch name {
	case "", TargetSwift:
		return SwiftTarget(), nil
	case TargetGo:
		return GoTarget(importMap), nil
	default:
		return nil, fmt.Errorf("unknown target %q; expecting %q or %q", name, TargetSwift, TargetGo)
	}
}

func swiftBanner(source string) string {
	return fmt.Sprintf(`// DO NOT EDIT.
// swift-format-ignore-file
// swiftlint:disable all
//
// Generated by the gRPC Swift generator plugin for the protocol buffer compiler.
// Source: %s
//
// For information on using the generated types, please see the documentation:
//   https://github.com/grpc/grpc-swift

`, source)
}

func goBanner(source string) string {
	return fmt.Sprintf(`// Code generated by protoc-gen-grpc. DO NOT EDIT.
// source: %s

`, source)
}
