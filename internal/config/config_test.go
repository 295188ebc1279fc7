package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stylebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults_Applied(t *testing.T) {
	path := writeConfig(t, "title: Test Site\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test Site", cfg.Title)
	require.Equal(t, "./rulesets", cfg.Sources.Rulesets)
	require.Equal(t, "./guidelines", cfg.Sources.Guidelines)
	require.Equal(t, "./public", cfg.Output.Directory)
	require.Equal(t, ".", cfg.Index.GroupSeparator)
	require.Equal(t, "go", cfg.Index.PrimaryPrefix)
	require.Equal(t, "ts", cfg.Index.SecondaryPrefix)
	require.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("STYLEBOOK_OUT", "/tmp/site-out")
	path := writeConfig(t, "output:\n  directory: ${STYLEBOOK_OUT}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/site-out", cfg.Output.Directory)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_NotifyEnabledWithoutURL_Rejected(t *testing.T) {
	path := writeConfig(t, "notify:\n  enabled: true\n")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "notify.url")
}

func TestInit_ExistingFileWithoutForce_Rejected(t *testing.T) {
	path := writeConfig(t, "title: existing\n")

	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Engineering Stylebook", cfg.Title)
}
