package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdown_Heading_UsesHashPrefix(t *testing.T) {
	out := Markdown([]Block{Heading{Level: 3, Text: "Options"}})
	require.Equal(t, "### Options\n", out)
}

func TestMarkdown_HeadingBeyondCap_ClampsToMaxLevel(t *testing.T) {
	out := Markdown([]Block{Heading{Level: 7, Text: "Deep"}})
	require.Equal(t, "#### Deep\n", out)
}

func TestMarkdown_Table_EmitsHeaderSeparatorAndRows(t *testing.T) {
	out := Markdown([]Block{Table{
		Columns: []string{"Rule", "Config"},
		Rows:    [][]string{{"no-console", "`error`"}},
	}})

	require.Equal(t, "| Rule | Config |\n| --- | --- |\n| no-console | `error` |\n", out)
}

func TestMarkdown_TableCellWithPipe_Escaped(t *testing.T) {
	out := Markdown([]Block{Table{
		Columns: []string{"Rule", "Config"},
		Rows:    [][]string{{"quotes", "`single|double`"}},
	}})

	require.Contains(t, out, `single\|double`)
}

func TestMarkdown_DefinitionList_BoldLabels(t *testing.T) {
	out := Markdown([]Block{DefinitionList{Entries: []Definition{
		{Label: "strict", Value: "`true`"},
		{Label: "target", Value: "`es2022`"},
	}}})

	require.Equal(t, "- **strict**: `true`\n- **target**: `es2022`\n", out)
}

func TestMarkdown_MultipleBlocks_SeparatedByBlankLine(t *testing.T) {
	out := Markdown([]Block{
		Heading{Level: 1, Text: "T"},
		RawLine{Text: "body"},
	})

	require.Equal(t, "# T\n\nbody\n", out)
}

func TestClampLevel_BoundsToValidRange(t *testing.T) {
	require.Equal(t, 1, ClampLevel(0))
	require.Equal(t, 2, ClampLevel(2))
	require.Equal(t, MaxHeadingLevel, ClampLevel(9))
}
