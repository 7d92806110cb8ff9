package codegen

func swiftServiceType(svc *ServiceDescriptor) string {
	if svc.Namespace.GeneratedUpperCase == "" {
		return svc.Name.GeneratedUpperCase
	}
	return svc.Namespace.GeneratedUpperCase + "_" + svc.Name.GeneratedUpperCase
}

func swiftServiceProperty(svc *ServiceDescriptor) string {
	if svc.Namespace.GeneratedLowerCase == "" {
		return svc.Name.GeneratedLowerCase
	}
	return svc.Namespace.GeneratedLowerCase + "_" + svc.Name.GeneratedLowerCase
}

func renderSwift(p *printer, req *GenerationRequest, opts RenderOptions) error {
	p.Raw(req.LeadingTrivia)

	acc := opts.AccessLevel.String()
	imp := func(module string, level string) {
		if opts.AccessLevelOnImports {
			p.P("%s import %s", level, module)
		} else {
			p.P("import %s", module)
		}
	}
	imp("GRPCCore", acc)
	for _, dep := range req.Dependencies {
		imp(dep.Module, dep.AccessLevel.String())
	}

	for i := range req.Services {
		svc := &req.Services[i]
		p.P("")
		swiftMetadata(p, svc, acc)
		if opts.Servers {
			p.P("")
			swiftServer(p, req, svc, acc)
		}
		if opts.Clients {
			p.P("")
			swiftClient(p, req, svc, acc)
		}
	}
	return nil
}

func swiftMetadata(p *printer, svc *ServiceDescriptor, acc string) {
	fqn := svc.FullyQualifiedName()
	typ := swiftServiceType(svc)

	p.P("// MARK: - %s", fqn)
	p.P("")
	p.P("/// Namespace containing generated types for the %q service.", fqn)
	p.P("%s enum %s {", acc, typ)
	p.In()
	p.P("/// Service descriptor for the %q service.", fqn)
	p.P("%s static let descriptor = GRPCCore.ServiceDescriptor(fullyQualifiedService: %q)", acc, fqn)
	p.P("/// Namespace for method metadata.")
	p.P("%s enum Method {", acc)
	p.In()
	for _, m := range svc.Methods {
		p.P("/// Namespace for %q metadata.", m.Name.Base)
		p.P("%s enum %s {", acc, m.Name.GeneratedUpperCase)
		p.In()
		p.P("/// Request type for %q.", m.Name.Base)
		p.P("%s typealias Input = %s", acc, m.InputType)
		p.P("/// Response type for %q.", m.Name.Base)
		p.P("%s typealias Output = %s", acc, m.OutputType)
		p.P("/// Descriptor for %q.", m.Name.Base)
		p.P("%s static let descriptor = GRPCCore.MethodDescriptor(", acc)
		p.In()
		p.P("service: GRPCCore.ServiceDescriptor(fullyQualifiedService: %q),", fqn)
		p.P("method: %q", m.Name.Base)
		p.Out()
		p.P(")")
		p.Out()
		p.P("}")
	}
	p.P("/// Descriptors for all methods in the %q service.", fqn)
	p.P("%s static let descriptors: [GRPCCore.MethodDescriptor] = [", acc)
	p.In()
	for i, m := range svc.Methods {
		sep := ","
		if i == len(svc.Methods)-1 {
			sep = ""
		}
		p.P("%s.descriptor%s", m.Name.GeneratedUpperCase, sep)
	}
	p.Out()
	p.P("]")
	p.Out()
	p.P("}")
	p.Out()
	p.P("}")
	p.P("")
	p.P("extension GRPCCore.ServiceDescriptor {")
	p.In()
	p.P("/// Service descriptor for the %q service.", fqn)
	p.P("%s static let %s = GRPCCore.ServiceDescriptor(fullyQualifiedService: %q)", acc, swiftServiceProperty(svc), fqn)
	p.Out()
	p.P("}")
}

func swiftServer(p *printer, req *GenerationRequest, svc *ServiceDescriptor, acc string) {
	fqn := svc.FullyQualifiedName()
	typ := swiftServiceType(svc)

	p.P("// MARK: %s (server)", fqn)
	p.P("")
	p.P("extension %s {", typ)
	p.In()
	p.P("/// Streaming variant of the service protocol for the %q service.", fqn)
	p.Doc(svc.Documentation, "///")
	p.P("%s protocol StreamingServiceProtocol: GRPCCore.RegistrableRPCService {", acc)
	p.In()
	for i, m := range svc.Methods {
		if i > 0 {
			p.P("")
		}
		p.P("/// Handle the %q method.", m.Name.Base)
		p.Doc(m.Documentation, "///")
		p.P("func %s(", m.Name.GeneratedLowerCase)
		p.In()
		p.P("request: GRPCCore.StreamingServerRequest<%s>,", m.InputType)
		p.P("context: GRPCCore.ServerContext")
		p.Out()
		p.P(") async throws -> GRPCCore.StreamingServerResponse<%s>", m.OutputType)
	}
	p.Out()
	p.P("}")
	p.Out()
	p.P("}")
	p.P("")
	p.P("extension %s.StreamingServiceProtocol {", typ)
	p.In()
	p.P("%s func registerMethods<Transport>(with router: inout GRPCCore.RPCRouter<Transport>) where Transport: GRPCCore.ServerTransport {", acc)
	p.In()
	for _, m := range svc.Methods {
		p.P("router.registerHandler(")
		p.In()
		p.P("forMethod: %s.Method.%s.descriptor,", typ, m.Name.GeneratedUpperCase)
		p.P("deserializer: %s,", req.LookupDeserializer(m.InputType))
		p.P("serializer: %s,", req.LookupSerializer(m.OutputType))
		p.P("handler: { request, context in")
		p.In()
		p.P("try await self.%s(", m.Name.GeneratedLowerCase)
		p.In()
		p.P("request: request,")
		p.P("context: context")
		p.Out()
		p.P(")")
		p.Out()
		p.P("}")
		p.Out()
		p.P(")")
	}
	p.Out()
	p.P("}")
	p.Out()
	p.P("}")
}

func swiftClientTypes(m *MethodDescriptor) (request, response, call string) {
	request, response = "ClientRequest", "ClientResponse"
	if m.IsInputStreaming {
		request = "StreamingClientRequest"
	}
	if m.IsOutputStreaming {
		response = "StreamingClientResponse"
	}
	switch m.Kind() {
	case RPCKindClientStreaming:
		call = "clientStreaming"
	case RPCKindServerStreaming:
		call = "serverStreaming"
	case RPCKindBidiStreaming:
		call = "bidirectionalStreaming"
	default:
		call = "unary"
	}
	return request, response, call
}

func swiftClient(p *printer, req *GenerationRequest, svc *ServiceDescriptor, acc string) {
	fqn := svc.FullyQualifiedName()
	typ := swiftServiceType(svc)

	signature := func(m *MethodDescriptor, explicitCoders bool, access string) {
		reqType, respType, _ := swiftClientTypes(m)
		p.P("%sfunc %s<Result>(", access, m.Name.GeneratedLowerCase)
		p.In()
		p.P("request: GRPCCore.%s<%s>,", reqType, m.InputType)
		if explicitCoders {
			p.P("serializer: some GRPCCore.MessageSerializer<%s>,", m.InputType)
			p.P("deserializer: some GRPCCore.MessageDeserializer<%s>,", m.OutputType)
			p.P("options: GRPCCore.CallOptions,")
		} else {
			p.P("options: GRPCCore.CallOptions = .defaults,")
		}
		p.P("onResponse handleResponse: @Sendable @escaping (GRPCCore.%s<%s>) async throws -> Result", respType, m.OutputType)
		p.Out()
	}

	p.P("// MARK: %s (client)", fqn)
	p.P("")
	p.P("extension %s {", typ)
	p.In()
	p.P("/// Generated client protocol for the %q service.", fqn)
	p.Doc(svc.Documentation, "///")
	p.P("%s protocol ClientProtocol: Sendable {", acc)
	p.In()
	for i := range svc.Methods {
		m := &svc.Methods[i]
		if i > 0 {
			p.P("")
		}
		p.P("/// Call the %q method.", m.Name.Base)
		p.Doc(m.Documentation, "///")
		signature(m, true, "")
		p.P(") async throws -> Result where Result: Sendable")
	}
	p.Out()
	p.P("}")
	p.P("")
	p.P("/// Generated client for the %q service.", fqn)
	p.P("%s struct Client<Transport>: ClientProtocol where Transport: GRPCCore.ClientTransport {", acc)
	p.In()
	p.P("private let client: GRPCCore.GRPCClient<Transport>")
	p.P("")
	p.P("%s init(wrapping client: GRPCCore.GRPCClient<Transport>) {", acc)
	p.In()
	p.P("self.client = client")
	p.Out()
	p.P("}")
	for i := range svc.Methods {
		m := &svc.Methods[i]
		_, _, call := swiftClientTypes(m)
		p.P("")
		signature(m, true, acc+" ")
		p.P(") async throws -> Result where Result: Sendable {")
		p.In()
		p.P("try await self.client.%s(", call)
		p.In()
		p.P("request: request,")
		p.P("descriptor: %s.Method.%s.descriptor,", typ, m.Name.GeneratedUpperCase)
		p.P("serializer: serializer,")
		p.P("deserializer: deserializer,")
		p.P("options: options,")
		p.P("onResponse: handleResponse")
		p.Out()
		p.P(")")
		p.Out()
		p.P("}")
	}
	p.Out()
	p.P("}")
	p.Out()
	p.P("}")
	p.P("")
	p.P("extension %s.ClientProtocol {", typ)
	p.In()
	for i := range svc.Methods {
		m := &svc.Methods[i]
		if i > 0 {
			p.P("")
		}
		signature(m, false, acc+" ")
		p.P(") async throws -> Result where Result: Sendable {")
		p.In()
		p.P("try await self.%s(", m.Name.GeneratedLowerCase)
		p.In()
		p.P("request: request,")
		p.P("serializer: %s,", req.LookupSerializer(m.InputType))
		p.P("deserializer: %s,", req.LookupDeserializer(m.OutputType))
		p.P("options: options,")
		p.P("onResponse: handleResponse")
		p.Out()
		p.P(")")
		p.Out()
		p.P("}")
	}
	p.Out()
	p.P("}")
}
