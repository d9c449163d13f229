package server_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudhap/shape-gallery/server"
)

func TestLoadConfig(t *testing.T) {
	t.Run("An empty path returns the defaults", func(t *testing.T) {
		cfg, err := server.LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, server.DefaultConfig(), cfg)
	})

	t.Run("File values override the defaults, unset keys keep them", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(p, []byte("addr: \":9090\"\npublic_dir: /srv/gallery\n"), 0o644))

		cfg, err := server.LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, "/srv/gallery", cfg.PublicDir)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("An unreadable file is an error", func(t *testing.T) {
		_, err := server.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Malformed YAML is an error", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(p, []byte("addr: [broken"), 0o644))

		_, err := server.LoadConfig(p)
		assert.Error(t, err)
	})
}
