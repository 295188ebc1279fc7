package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stationhq/stylebook/internal/config"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover_FindsRulesetsAndGuidelines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rulesets/go.lint.yaml", "rules: {}\n")
	writeFile(t, root, "rulesets/ts.lint.yml", "rules: {}\n")
	writeFile(t, root, "rulesets/notes.txt", "ignored\n")
	writeFile(t, root, "guidelines/go-errors.md", "---\nid: x\n---\nbody\n")

	d := New(config.SourcesConfig{
		Rulesets:   filepath.Join(root, "rulesets"),
		Guidelines: filepath.Join(root, "guidelines"),
	})
	sources, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, sources, 3)
	require.Equal(t, KindRuleset, sources[0].Kind)
	require.Equal(t, "go.lint", sources[0].Name)
	require.Equal(t, "ts.lint", sources[1].Name)
	require.Equal(t, KindGuideline, sources[2].Kind)
	require.Equal(t, "go-errors", sources[2].Name)
}

func TestDiscover_ExcludeGlobs_Filter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guidelines/keep.md", "x")
	writeFile(t, root, "guidelines/drafts/skip.md", "x")

	d := New(config.SourcesConfig{
		Guidelines: filepath.Join(root, "guidelines"),
		Exclude:    []string{"drafts/**"},
	})
	sources, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.Equal(t, "keep", sources[0].Name)
}

func TestDiscover_IncludeGlobs_Narrow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rulesets/go.lint.yaml", "x: 1")
	writeFile(t, root, "rulesets/legacy/old.yaml", "x: 1")

	d := New(config.SourcesConfig{
		Rulesets: filepath.Join(root, "rulesets"),
		Include:  []string{"*.yaml"},
	})
	sources, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.Equal(t, "go.lint", sources[0].Name)
}

func TestDiscover_MissingDirectories_EmptyNotError(t *testing.T) {
	d := New(config.SourcesConfig{
		Rulesets:   filepath.Join(t.TempDir(), "absent"),
		Guidelines: filepath.Join(t.TempDir(), "also-absent"),
	})
	sources, err := d.Discover()
	require.NoError(t, err)
	require.Empty(t, sources)
}

func TestDiscover_HiddenFiles_Skipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guidelines/.hidden.md", "x")
	writeFile(t, root, "guidelines/visible.md", "x")

	d := New(config.SourcesConfig{Guidelines: filepath.Join(root, "guidelines")})
	sources, err := d.Discover()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	require.Equal(t, "visible", sources[0].Name)
}
