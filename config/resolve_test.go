package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindApplicable(t *testing.T) {
	outer := Default()
	inner := Default()
	inner.AccessLevel = AccessLevelPublic
	configs := map[string]GenerationConfig{
		"/a/config.json":   outer,
		"/a/b/config.json": inner,
	}

	testCases := []struct {
		target       string
		expectedPath string
	}{
		{target: "/a/b/c/f.proto", expectedPath: "/a/b/config.json"},
		{target: "/a/b/f.proto", expectedPath: "/a/b/config.json"},
		{target: "/a/f.proto", expectedPath: "/a/config.json"},
		{target: "/a/bc/f.proto", expectedPath: "/a/config.json"},
		{target: "/x/f.proto"},
		{target: "/f.proto"},
	}
	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			p, conf, ok := FindApplicable(tc.target, configs)
			if tc.expectedPath == "" {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, tc.expectedPath, p)
			require.Equal(t, configs[tc.expectedPath], conf)
		})
	}
}

func TestFindApplicableNoConfigs(t *testing.T) {
	_, _, ok := FindApplicable("/a/b.proto", nil)
	require.False(t, ok)
}

func TestComponents(t *testing.T) {
	require.Equal(t, []string{"/", "a", "b"}, Components("/a/b"))
	require.Equal(t, []string{"a", "b", "c"}, Components("a//b/./c"))
	require.Equal(t, []string{"/"}, Components("/"))
	require.Empty(t, Components("."))
	require.Empty(t, Components(""))
}

func TestNewSetRejectsDuplicates(t *testing.T) {
	_, err := NewSet(map[string]GenerationConfig{
		"/a/" + FileBaseName + ".json": Default(),
		"/a/" + FileBaseName + ".yaml": Default(),
	})
	var dupErr *DuplicateConfigError
	require.True(t, errors.As(err, &dupErr))
	require.Equal(t, "/a", dupErr.Dir)
}

func TestSetResolve(t *testing.T) {
	s, err := NewSet(map[string]GenerationConfig{"/a/b/config.json": Default()})
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	p, _, err := s.Resolve("/a/b/c.proto")
	require.NoError(t, err)
	require.Equal(t, "/a/b/config.json", p)

	_, _, err = s.Resolve("/a/c.proto")
	var noConfig *NoApplicableConfigError
	require.True(t, errors.As(err, &noConfig))
	require.Equal(t, "/a/c.proto", noConfig.File)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	write := func(rel, contents string) {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(contents), 0644))
	}
	write(FileBaseName+".json", `{}`)
	write(filepath.Join("sub", FileBaseName+".yaml"), "generatedSource:\n  accessLevel: public\n")
	write(filepath.Join("sub", "other.json"), `not a config`)

	s, err := Discover(root, nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, FileBaseName+".json"),
		filepath.Join(root, "sub", FileBaseName+".yaml"),
	}, s.Paths())

	p, conf, err := s.Resolve(filepath.Join(root, "sub", "deeper", "x.proto"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "sub", FileBaseName+".yaml"), p)
	require.Equal(t, AccessLevelPublic, conf.AccessLevel)

	write(filepath.Join("sub", FileBaseName+".json"), `{}`)
	_, err = Discover(root, nil)
	var dupErr *DuplicateConfigError
	require.True(t, errors.As(err, &dupErr))
}
