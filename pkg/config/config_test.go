package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAMLOntoDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cairn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /var/lib/cairn\nreplication_factor: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/cairn", cfg.DataDir)
	assert.Equal(t, 5, cfg.ReplicationFactor)
	assert.Equal(t, Default().ReadQuorum, cfg.ReadQuorum, "fields absent from the file keep their default")
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := Load("/nonexistent/cairn.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsNonOverlappingQuorums(t *testing.T) {
	cfg := Default()
	cfg.ReplicationFactor = 3
	cfg.ReadQuorum = 1
	cfg.WriteQuorum = 1
	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
