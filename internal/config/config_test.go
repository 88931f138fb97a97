package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/bidsgraph/internal/codec"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bidsgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Cache.Pinned)
	assert.Equal(t, int64(codec.DefaultMmapThreshold), cfg.Codec.MmapThreshold)
	assert.False(t, cfg.Load.IgnoreDerivatives)
	assert.Empty(t, cfg.Load.ExtraIgnore)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, "cache:\n  pinned: 8\nload:\n  ignore_derivatives: true\n  extra_ignore: [sourcedata/, '*.log']\n")
	t.Setenv("BIDSGRAPH_CACHE_PINNED", "32")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Cache.Pinned, "environment wins over the file")
	assert.True(t, cfg.Load.IgnoreDerivatives)
	assert.Equal(t, []string{"sourcedata/", "*.log"}, cfg.Load.ExtraIgnore)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(viper.New(), writeConfig(t, "cache:\n  pinned: -1\n"))
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load(viper.New(), writeConfig(t, "load:\n  extra_ignore: ['']\n"))
	assert.Error(t, err)

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoaderOptions(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "/etc/schema.yaml", []byte(
		"version: 2.0.0\ntypes:\n  - name: File\n    members:\n      - {name: name, type: str}\nentities:\n  - {name: subject, key: sub, format: label}\n"), 0o644))

	cfg := &Config{
		Schema: "/etc/schema.yaml",
		Cache:  CacheConfig{Pinned: 4},
		Codec:  CodecConfig{MmapThreshold: 1024},
		Load:   LoadConfig{ExtraIgnore: []string{"tmp/"}},
	}
	opts, err := cfg.LoaderOptions(fsys)
	require.NoError(t, err)
	assert.Equal(t, 4, opts.PinnedContents)
	assert.Equal(t, []string{"tmp/"}, opts.ExtraIgnore)
	require.NotNil(t, opts.Codecs)
	_, ok := opts.Codecs.Reader("json")
	assert.True(t, ok)
	require.NotNil(t, opts.Schema)
	assert.Equal(t, "2.0.0", opts.Schema.VersionString())

	cfg = &Config{Codec: CodecConfig{MmapThreshold: codec.DefaultMmapThreshold}}
	opts, err = cfg.LoaderOptions(fsys)
	require.NoError(t, err)
	assert.Nil(t, opts.Codecs)
	assert.Nil(t, opts.Schema)

	_, err = (&Config{Schema: "/nope.yaml"}).LoaderOptions(fsys)
	assert.Error(t, err)
}
