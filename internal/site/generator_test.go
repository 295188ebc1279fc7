package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stationhq/stylebook/internal/config"
)

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Title: "Test Stylebook",
		Sources: config.SourcesConfig{
			Rulesets:   filepath.Join(dir, "rulesets"),
			Guidelines: filepath.Join(dir, "guidelines"),
		},
		Output: config.OutputConfig{Directory: filepath.Join(dir, "out")},
		Index: config.IndexConfig{
			GroupSeparator:  ".",
			PrimaryPrefix:   "go",
			SecondaryPrefix: "ts",
		},
	}
	return cfg, dir
}

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const lintRuleset = `rules:
  no-console: error
  max-lines:
    severity: warn
    max: 500
`

const errorHandlingGuideline = `---
id: error-handling
title: Error Handling
category: reliability
priority: 1
tags: [go, style]
---

Wrap errors with enough context to locate the failing operation.
`

func TestBuild_FullRun_ProducesSiteAndReport(t *testing.T) {
	cfg, dir := testConfig(t)
	writeSource(t, filepath.Join(dir, "rulesets", "go.lint.yaml"), lintRuleset)
	writeSource(t, filepath.Join(dir, "guidelines", "error-handling.md"), errorHandlingGuideline)

	g := NewGenerator(cfg)
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Equal(t, 1, report.Rulesets)
	require.Equal(t, 1, report.Guidelines)
	// One ruleset page, one guideline page, three index pages.
	require.Equal(t, 5, report.Pages)

	site := g.SitePath()
	for _, p := range []string{
		"index.md",
		"priority.md",
		filepath.Join("rulesets", "index.md"),
		filepath.Join("rulesets", "go.lint.md"),
		filepath.Join("guidelines", "error-handling.md"),
		filepath.Join("assets", "stylebook.css"),
	} {
		_, statErr := os.Stat(filepath.Join(site, p))
		require.NoError(t, statErr, p)
	}

	page, readErr := os.ReadFile(filepath.Join(site, "rulesets", "go.lint.md"))
	require.NoError(t, readErr)
	require.Contains(t, string(page), "# go.lint")
	require.Contains(t, string(page), "| no-console | `error` |")
	require.Contains(t, string(page), "| max-lines | {severity: warn, max: 500} |")

	_, statErr := os.Stat(filepath.Join(cfg.Output.Directory, "build-report.json"))
	require.NoError(t, statErr)
}

func TestBuild_GuidelinePage_KeepsBodyVerbatim(t *testing.T) {
	cfg, dir := testConfig(t)
	writeSource(t, filepath.Join(dir, "guidelines", "error-handling.md"), errorHandlingGuideline)

	g := NewGenerator(cfg)
	_, err := g.Build(context.Background())
	require.NoError(t, err)

	page, readErr := os.ReadFile(filepath.Join(g.SitePath(), "guidelines", "error-handling.md"))
	require.NoError(t, readErr)
	require.Contains(t, string(page), "# Error Handling")
	require.Contains(t, string(page), "- **id**: `error-handling`")
	require.Contains(t, string(page), "Wrap errors with enough context to locate the failing operation.")
}

func TestBuild_MalformedRuleset_WarnsAndContinues(t *testing.T) {
	cfg, dir := testConfig(t)
	writeSource(t, filepath.Join(dir, "rulesets", "broken.yaml"), "- just\n- a list\n")
	writeSource(t, filepath.Join(dir, "rulesets", "go.lint.yaml"), lintRuleset)

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.Rulesets)

	var codes []IssueCode
	for _, is := range report.Issues {
		codes = append(codes, is.Code)
	}
	require.Contains(t, codes, IssueMalformedRuleset)
}

func TestBuild_GuidelineWithoutMetadata_RejectedAndCounted(t *testing.T) {
	cfg, dir := testConfig(t)
	writeSource(t, filepath.Join(dir, "guidelines", "naked.md"), "# No header\n")
	writeSource(t, filepath.Join(dir, "guidelines", "error-handling.md"), errorHandlingGuideline)

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.Guidelines)
	require.Equal(t, 1, report.RejectedDocs)
}

func TestBuild_DuplicateGuidelineSlug_SecondSkipped(t *testing.T) {
	cfg, dir := testConfig(t)
	writeSource(t, filepath.Join(dir, "guidelines", "a.md"), errorHandlingGuideline)
	writeSource(t, filepath.Join(dir, "guidelines", "b.md"), errorHandlingGuideline)

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Guidelines)

	var codes []IssueCode
	for _, is := range report.Issues {
		codes = append(codes, is.Code)
	}
	require.Contains(t, codes, IssueDuplicateSlug)
}

func TestBuild_EmptyInput_WarnsButSucceeds(t *testing.T) {
	cfg, _ := testConfig(t)

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.Rulesets)
	require.Equal(t, 0, report.Guidelines)

	var codes []IssueCode
	for _, is := range report.Issues {
		codes = append(codes, is.Code)
	}
	require.Contains(t, codes, IssueEmptyInput)
}

func TestBuild_SameInputTwice_SiteIsByteStable(t *testing.T) {
	cfg, dir := testConfig(t)
	writeSource(t, filepath.Join(dir, "rulesets", "go.lint.yaml"), lintRuleset)
	writeSource(t, filepath.Join(dir, "guidelines", "error-handling.md"), errorHandlingGuideline)

	g := NewGenerator(cfg)
	_, err := g.Build(context.Background())
	require.NoError(t, err)
	first := readTree(t, g.SitePath())

	_, err = g.Build(context.Background())
	require.NoError(t, err)
	second := readTree(t, g.SitePath())

	require.Equal(t, first, second)
}

func TestBuild_CanceledContext_ReportsCanceledOutcome(t *testing.T) {
	cfg, _ := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewGenerator(cfg).Build(ctx)
	require.Error(t, err)
	require.Equal(t, OutcomeCanceled, report.Outcome)
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		tree[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}
