package plugins

import (
	"fmt"
	"sort"
	"sync"
)

var (
	pluginReg   = map[string]Plugin{}
	pluginRegMu sync.RWMutex
)

// RegisterPlugin registers a plugin with the given name, so it can be run
// in-process. Packages that implement a plugin should call this in an init
// function. Registering the same name twice panics.
func RegisterPlugin(name string, plugin Plugin) {
	pluginRegMu.Lock()
	defer pluginRegMu.Unlock()
	if _, ok := pluginReg[name]; ok {
		panic(fmt.Sprintf("plugin with name %s already registered", name))
	}
	pluginReg[name] = plugin
}

// LookupPlugin returns the plugin registered with the given name.
func LookupPlugin(name string) (Plugin, bool) {
	pluginRegMu.RLock()
	defer pluginRegMu.RUnlock()
	p, ok := pluginReg[name]
	return p, ok
}

// RegisteredPluginNames returns the names of all registered plugins, sorted.
func RegisteredPluginNames() []string {
	pluginRegMu.RLock()
	defer pluginRegMu.RUnlock()
	names := make([]string, 0, len(pluginReg))
	for k := range pluginReg {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Run runs the given plugin in-process and collects its output in a new
// response.
func Run(name string, plugin Plugin, req *CodeGenRequest) (*CodeGenResponse, error) {
	resp := NewCodeGenResponse(name, nil)
	if err := plugin(req, resp); err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	return resp, nil
}
