// Package plugins contains the plumbing shared by protoc plugins written in
// Go and by programs that drive such plugins.
//
// # Interface for Protoc Plugins
//
// A protoc plugin need only provide a function whose signature matches the
// Plugin type and then wire it up in a main method like so:
//
//	func main() {
//	    plugins.PluginMain(doCodeGen)
//	}
//
//	func doCodeGen(req  *plugins.CodeGenRequest,
//	               resp *plugins.CodeGenResponse) error {
//	    // ...
//	    // Process req, generate code to resp
//	    // ...
//	}
//
// The same function can be run in-process, without protoc, by registering
// it with RegisterPlugin and looking it up with LookupPlugin. Exec runs a
// plugin executable against descriptors that were produced some other way,
// for example by parsing sources with protoparse.
package plugins
