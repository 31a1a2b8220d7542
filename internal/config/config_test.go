package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
}

func TestGetDefaultConfig_Values(t *testing.T) {
	cfg := GetDefaultConfig()

	require.Equal(t, "127.0.0.1:2049", cfg.NFS.BindAddress)
	require.Equal(t, "127.0.0.1:3031", cfg.Subnet.BindAddress)
	require.Equal(t, "10.0.0.0/8", cfg.Subnet.AllowedNetwork)
	require.NotEmpty(t, cfg.Subnet.ProtectedNetworks)
	require.Equal(t, 64, cfg.NFS.MaxCompoundOps)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:2049", cfg.NFS.BindAddress)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.NFS.ExportRoot = "/srv/custom-export"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/custom-export", loaded.NFS.ExportRoot)
	require.Equal(t, cfg.NFS.MaxReadSize, loaded.NFS.MaxReadSize)
}

func TestInitConfigToPath_WritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, InitConfigToPath(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, GetDefaultConfig().NFS.BindAddress, cfg.NFS.BindAddress)
}

func TestInitConfigToPath_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, InitConfigToPath(path, false))
	require.Error(t, InitConfigToPath(path, false))
	require.NoError(t, InitConfigToPath(path, true))
}

func TestSaveConfig_ParsesDurationsAndByteSizes(t *testing.T) {
	cfg := GetDefaultConfig()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.NFS.Timeouts.Idle, loaded.NFS.Timeouts.Idle)
	require.Equal(t, cfg.NFS.MaxReadSize, loaded.NFS.MaxReadSize)
}
