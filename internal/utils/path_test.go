package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataFile(t *testing.T) {
	execDir := t.TempDir()
	configDir := t.TempDir()
	pr := NewPathResolverAt(execDir, configDir)

	dataDir := filepath.Join(execDir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "destinations.json"), []byte("[]"), 0644))

	assert.Equal(t, filepath.Join(dataDir, "destinations.json"), pr.GetDataFile("data"))

	// binary index wins over json in the same dir
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "destinations.idx"), []byte("...."), 0644))
	assert.Equal(t, filepath.Join(dataDir, "destinations.idx"), pr.GetDataFile("data"))

	direct := filepath.Join(configDir, "custom.json")
	require.NoError(t, os.WriteFile(direct, []byte("[]"), 0644))
	assert.Equal(t, direct, pr.GetDataFile(direct))

	missing := filepath.Join(configDir, "nope")
	assert.Equal(t, filepath.Join(dataDir, "destinations.idx"), pr.GetDataFile(missing), "falls back to <execDir>/data")
}

func TestGetConfigPath(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "cfg")
	pr := NewPathResolverAt(t.TempDir(), configDir)

	path := pr.GetConfigPath("destserve.toml")
	assert.Equal(t, filepath.Join(configDir, "destserve.toml"), path)
	assert.DirExists(t, configDir)
}
