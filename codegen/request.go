// Package codegen translates schema file descriptors into language-agnostic
// code generation requests and renders them as source code for a target
// language. It also implements the services protoc plugin.
package codegen

import (
	"github.com/jhump/grpcgen/config"
)

// Name is an identifier in its declared form plus the forms used in generated
// code.
type Name struct {
	// The name as declared in the schema.
	Base string `json:"base"`
	// The name as an upper-camel-case identifier.
	GeneratedUpperCase string `json:"generatedUpperCase"`
	// The name as a lower-camel-case identifier.
	GeneratedLowerCase string `json:"generatedLowerCase"`
}

// Dependency is a module that generated code imports.
type Dependency struct {
	Module      string             `json:"module"`
	AccessLevel config.AccessLevel `json:"accessLevel"`
}

// MethodDescriptor describes one RPC method.
type MethodDescriptor struct {
	Documentation     string `json:"documentation"`
	Name              Name   `json:"name"`
	IsInputStreaming  bool   `json:"isInputStreaming"`
	IsOutputStreaming bool   `json:"isOutputStreaming"`
	// Type names of the request and response messages in the target
	// language.
	InputType  string `json:"inputType"`
	OutputType string `json:"outputType"`
}

// RPCKind is one of the four combinations of streaming flags.
type RPCKind int

const (
	RPCKindUnary RPCKind = iota
	RPCKindClientStreaming
	RPCKindServerStreaming
	RPCKindBidiStreaming
)

// Kind returns the kind of RPC based on the method's streaming flags.
func (m *MethodDescriptor) Kind() RPCKind {
	switch {
	case m.IsInputStreaming && m.IsOutputStreaming:
		return RPCKindBidiStreaming
	case m.IsInputStreaming:
		return RPCKindClientStreaming
	case m.IsOutputStreaming:
		return RPCKindServerStreaming
	default:
		return RPCKindUnary
	}
}

// ServiceDescriptor describes one service and its methods.
type ServiceDescriptor struct {
	Documentation string             `json:"documentation"`
	Name          Name               `json:"name"`
	Namespace     Name               `json:"namespace"`
	Methods       []MethodDescriptor `json:"methods"`
}

// FullyQualifiedName returns the service's name qualified by its package, as
// used on the wire.
func (s *ServiceDescriptor) FullyQualifiedName() string {
	if s.Namespace.Base == "" {
		return s.Name.Base
	}
	return s.Namespace.Base + "." + s.Name.Base
}

// GenerationRequest is everything a source emitter needs to generate code
// for the services in one schema file.
type GenerationRequest struct {
	// Name of the schema file.
	FileName string `json:"fileName"`
	// Comment block that starts the generated file.
	LeadingTrivia string `json:"leadingTrivia"`
	// Modules imported by the generated file, in order.
	Dependencies []Dependency        `json:"dependencies"`
	Services     []ServiceDescriptor `json:"services"`

	// LookupSerializer returns an expression that creates a serializer for
	// the given message type.
	LookupSerializer func(messageType string) string `json:"-"`
	// LookupDeserializer returns an expression that creates a deserializer
	// for the given message type.
	LookupDeserializer func(messageType string) string `json:"-"`
}
