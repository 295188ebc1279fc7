package linkcheck

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerify_ResolvableRelativeLink_NoFindings(t *testing.T) {
	pages := map[string]string{
		"guidelines/a.md": "see [b](b.md)\n",
		"guidelines/b.md": "# B\n",
	}

	broken, err := Verify(pages)
	require.NoError(t, err)
	require.Empty(t, broken)
}

func TestVerify_MissingTarget_Reported(t *testing.T) {
	pages := map[string]string{
		"guidelines/a.md": "see [gone](missing.md)\n",
	}

	broken, err := Verify(pages)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	require.Equal(t, "guidelines/a.md", broken[0].Page)
	require.Equal(t, "missing.md", broken[0].Target)
	require.Equal(t, "gone", broken[0].Text)
}

func TestVerify_ParentRelativeAndRootLinks_Resolve(t *testing.T) {
	pages := map[string]string{
		"guidelines/a.md":  "[up](../rulesets/go-lint.md) and [root](/index.md)\n",
		"rulesets/go-lint.md": "# L\n",
		"index.md":         "# Home\n",
	}

	broken, err := Verify(pages)
	require.NoError(t, err)
	require.Empty(t, broken)
}

func TestVerify_ExternalAndAnchorLinks_Ignored(t *testing.T) {
	pages := map[string]string{
		"a.md": "[ext](https://example.com/x) [anchor](#section) [mail](mailto:x@y.z)\n",
	}

	broken, err := Verify(pages)
	require.NoError(t, err)
	require.Empty(t, broken)
}

func TestVerify_FindingsOrderedByPage(t *testing.T) {
	pages := map[string]string{
		"z.md": "[x](zz.md)\n",
		"a.md": "[x](aa.md)\n",
	}

	broken, err := Verify(pages)
	require.NoError(t, err)
	require.Len(t, broken, 2)
	require.Equal(t, "a.md", broken[0].Page)
	require.Equal(t, "z.md", broken[1].Page)
}
