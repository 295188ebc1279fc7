package site

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stationhq/stylebook/internal/config"
	"github.com/stationhq/stylebook/internal/guideline"
)

func TestGuidelinePage_MultipleHeadings_GetsContentsSection(t *testing.T) {
	g := &guideline.Guideline{
		ID:       "naming",
		Title:    "Naming",
		Category: "style",
		Priority: 1,
		Slug:     "naming",
		Body:     "## Packages\n\ntext\n\n## Variables\n\n### Locals\n\ntext\n",
	}

	page := guidelinePage(g)
	require.Contains(t, page, "## Contents")
	require.Contains(t, page, "- Packages")
	require.Contains(t, page, "  - Locals")
}

func TestGuidelinePage_SingleHeading_NoContentsSection(t *testing.T) {
	g := &guideline.Guideline{
		ID:       "naming",
		Title:    "Naming",
		Category: "style",
		Priority: 1,
		Slug:     "naming",
		Body:     "## Packages\n\ntext\n",
	}

	require.NotContains(t, guidelinePage(g), "## Contents")
}

func TestIndexPages_LinksPointAtGeneratedPages(t *testing.T) {
	cfg := &config.Config{Title: "Stylebook"}
	cfg.Index.PrimaryPrefix = "go"
	cfg.Index.SecondaryPrefix = "ts"

	guidelines := []*guideline.Guideline{
		{ID: "err", Title: "Errors", Category: "reliability", Priority: 1, Slug: "err"},
	}
	idx := BuildIndex(guidelines, []string{"go.lint", "ts.compiler"}, IndexOptions{
		Separator: ".", PrimaryPrefix: "go", SecondaryPrefix: "ts",
	})

	pages, err := indexPages(cfg, idx)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	require.Contains(t, pages["index.md"], "# Stylebook")
	require.Contains(t, pages["index.md"], "[Errors](guidelines/err.md)")
	require.Contains(t, pages["priority.md"], "| 1 | [Errors](guidelines/err.md) | reliability |")
	require.Contains(t, pages["rulesets/index.md"], "[go.lint](go.lint.md)")
	require.Contains(t, pages["rulesets/index.md"], "## Ts configurations")
}

func TestRulesetPagePath_SlugsIdentifier(t *testing.T) {
	require.Equal(t, "rulesets/go.lint.md", rulesetPagePath("go.lint"))
	require.Equal(t, "guidelines/api-design.md", guidelinePagePath(&guideline.Guideline{Slug: "api-design"}))
}
