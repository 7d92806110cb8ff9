package invoke

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ProtocPathEnv names the environment variable that points at protoc when it
// cannot be found otherwise.
const ProtocPathEnv = "PROTOC_PATH"

// ErrProtocNotFound is returned when no protoc executable can be located.
var ErrProtocNotFound = errors.New("protoc not found: set an explicit path, put it on the PATH, or set " + ProtocPathEnv)

// DiscoverProtoc locates the protoc executable. An explicit path always
// wins. Otherwise searchDirs are tried in order, then the directories on the
// PATH, and finally the PROTOC_PATH environment variable. The environment is
// read through getenv.
func DiscoverProtoc(explicit string, searchDirs []string, getenv func(string) string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if loc := findInPath("protoc", searchDirs, getenv); loc != "" {
		return loc, nil
	}
	if env := getenv(ProtocPathEnv); env != "" {
		return env, nil
	}
	return "", ErrProtocNotFound
}

// FindPlugin locates the executable of the given plugin in searchDirs or on
// the PATH. It returns an empty string if there is none.
func FindPlugin(kind PluginKind, searchDirs []string, getenv func(string) string) string {
	return findInPath(kind.ExecutableName(), searchDirs, getenv)
}

func findInPath(name string, searchDirs []string, getenv func(string) string) string {
	dirs := append([]string{}, searchDirs...)
	if pathEnv := getenv("PATH"); pathEnv != "" {
		dirs = append(dirs, strings.Split(pathEnv, string(filepath.ListSeparator))...)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		loc := filepath.Join(dir, name)
		if info, err := os.Stat(loc); err == nil && !info.IsDir() {
			return loc
		}
	}
	return ""
}
