package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stationhq/stylebook/internal/config"
	"github.com/stationhq/stylebook/internal/discover"
	"github.com/stationhq/stylebook/internal/frontmatter"
	"github.com/stationhq/stylebook/internal/gitinfo"
	"github.com/stationhq/stylebook/internal/guideline"
	"github.com/stationhq/stylebook/internal/linkcheck"
	"github.com/stationhq/stylebook/internal/logfields"
	"github.com/stationhq/stylebook/internal/metrics"
	"github.com/stationhq/stylebook/internal/ruleset"
	"github.com/stationhq/stylebook/internal/util/sets"
)

// Generator runs the full build pipeline: discover sources, load and
// classify them, render pages, compute indexes, and swap the finished tree
// into place.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
	revision *gitinfo.Revision
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder (Noop by default).
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithRevision stamps the build report with source revision metadata.
func WithRevision(rev *gitinfo.Revision) Option {
	return func(g *Generator) { g.revision = rev }
}

// NewGenerator creates a Generator for the given configuration.
func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BuildState carries mutable state across stages of one run.
type BuildState struct {
	Generator  *Generator
	BuildID    string
	StagingDir string
	Sources    []discover.Source
	Rulesets   []*ruleset.Node
	Guidelines []*guideline.Guideline
	Index      *Index
	// Pages maps site-relative paths to rendered content. Filled by the
	// render and index stages, written once during finalize.
	Pages  map[string]string
	Report *Report
}

// Build executes the pipeline and returns the report. A non-nil error means
// the run aborted (fatal or canceled); warnings are in the report only.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	buildID := uuid.NewString()
	bs := &BuildState{
		Generator: g,
		BuildID:   buildID,
		Pages:     make(map[string]string),
		Report:    newReport(buildID),
	}
	if g.revision != nil {
		bs.Report.Commit = g.revision.Commit
	}

	slog.Info("Starting site build", logfields.BuildID(buildID))
	start := time.Now()

	err := runStages(ctx, bs, g.recorder, []namedStage{
		{StagePrepare, stagePrepare},
		{StageDiscover, stageDiscover},
		{StageLoad, stageLoad},
		{StageRender, stageRender},
		{StageIndexes, stageIndexes},
		{StageVerifyLinks, stageVerifyLinks},
		{StageAssets, stageAssets},
		{StageFinalize, stageFinalize},
	})

	bs.Report.finish()
	g.recorder.ObserveBuildDuration(time.Since(start))
	g.recorder.IncBuildOutcome(string(bs.Report.Outcome))
	g.recorder.SetPagesRendered(bs.Report.Pages)

	if persistErr := bs.Report.Persist(g.cfg.Output.Directory); persistErr != nil {
		slog.Warn("Failed to persist build report", logfields.Error(persistErr))
	}
	if bs.StagingDir != "" {
		if cleanupErr := os.RemoveAll(bs.StagingDir); cleanupErr != nil {
			slog.Warn("Failed to clean staging directory", logfields.Error(cleanupErr))
		}
	}

	slog.Info("Site build finished", logfields.BuildID(buildID), slog.String("outcome", string(bs.Report.Outcome)))
	return bs.Report, err
}

// Check runs discovery and loading only, validating every source without
// writing any output.
func (g *Generator) Check(ctx context.Context) (*Report, error) {
	buildID := uuid.NewString()
	bs := &BuildState{
		Generator: g,
		BuildID:   buildID,
		Pages:     make(map[string]string),
		Report:    newReport(buildID),
	}
	err := runStages(ctx, bs, g.recorder, []namedStage{
		{StageDiscover, stageDiscover},
		{StageLoad, stageLoad},
	})
	bs.Report.finish()
	return bs.Report, err
}

// SitePath returns the directory holding the generated content tree.
func (g *Generator) SitePath() string {
	return filepath.Join(g.cfg.Output.Directory, "site")
}

func stagePrepare(_ context.Context, bs *BuildState) error {
	outDir := bs.Generator.cfg.Output.Directory
	if bs.Generator.cfg.Output.Clean {
		// Crashed builds can leave staging directories behind.
		stale, _ := filepath.Glob(filepath.Join(outDir, ".staging-*"))
		for _, dir := range stale {
			if err := os.RemoveAll(dir); err != nil {
				slog.Warn("Could not remove stale staging directory", logfields.Path(dir), logfields.Error(err))
			}
		}
	}

	staging := filepath.Join(outDir, ".staging-"+bs.BuildID)
	if err := os.RemoveAll(staging); err != nil {
		return newFatalStageError(StagePrepare, fmt.Errorf("clear staging: %w", err))
	}
	for _, sub := range []string{"rulesets", "guidelines", "assets"} {
		if err := os.MkdirAll(filepath.Join(staging, sub), 0o750); err != nil {
			return newFatalStageError(StagePrepare, fmt.Errorf("create staging tree: %w", err))
		}
	}
	bs.StagingDir = staging
	return nil
}

func stageDiscover(_ context.Context, bs *BuildState) error {
	d := discover.New(bs.Generator.cfg.Sources)
	sources, err := d.Discover()
	if err != nil {
		return newFatalStageError(StageDiscover, err)
	}
	bs.Sources = sources
	if len(sources) == 0 {
		// Empty input is valid; surface it so operators notice.
		bs.Report.AddIssue(IssueEmptyInput, StageDiscover, SeverityWarning, "",
			"no ruleset or guideline sources found", nil)
	}
	return nil
}

// stageLoad parses every discovered source. Failures are scoped to the
// single ruleset or document: the unit is reported and skipped, never the
// whole run.
func stageLoad(ctx context.Context, bs *BuildState) error {
	slugs := sets.New[string]()
	for _, src := range bs.Sources {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageLoad, ctx.Err())
		default:
		}

		data, err := os.ReadFile(src.Path)
		if err != nil {
			bs.Report.AddIssue(IssueGenericStageError, StageLoad, SeverityWarning, src.Name,
				fmt.Sprintf("read %s: %v", src.RelativePath, err), err)
			continue
		}

		switch src.Kind {
		case discover.KindRuleset:
			node, err := ruleset.Load(src.Name, data)
			if err != nil {
				bs.Report.AddIssue(IssueMalformedRuleset, StageLoad, SeverityWarning, src.Name, err.Error(), err)
				continue
			}
			bs.Rulesets = append(bs.Rulesets, node)
		case discover.KindGuideline:
			g, err := loadGuideline(src, data)
			if err != nil {
				bs.Report.AddIssue(IssueMissingMetadata, StageLoad, SeverityWarning, src.Name, err.Error(), err)
				bs.Report.RejectedDocs++
				bs.Generator.recorder.IncDocumentRejected()
				continue
			}
			if slugs.Has(g.Slug) {
				bs.Report.AddIssue(IssueDuplicateSlug, StageLoad, SeverityWarning, g.ID,
					fmt.Sprintf("guideline slug %q already taken; skipping %s", g.Slug, src.RelativePath), nil)
				continue
			}
			slugs.Add(g.Slug)
			bs.Guidelines = append(bs.Guidelines, g)
		}
	}

	bs.Report.Rulesets = len(bs.Rulesets)
	bs.Report.Guidelines = len(bs.Guidelines)
	slog.Info("Sources loaded",
		slog.Int("rulesets", len(bs.Rulesets)),
		slog.Int("guidelines", len(bs.Guidelines)),
		slog.Int("rejected", bs.Report.RejectedDocs))
	return nil
}

func loadGuideline(src discover.Source, data []byte) (*guideline.Guideline, error) {
	header, body, had, _, err := frontmatter.Split(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, src.RelativePath)
	}
	if !had {
		return nil, fmt.Errorf("%w: no metadata header (%s)", guideline.ErrMissingMetadata, src.RelativePath)
	}
	fields, err := frontmatter.Parse(header)
	if err != nil {
		return nil, fmt.Errorf("parse metadata header %s: %w", src.RelativePath, err)
	}
	return guideline.FromMetadata(src.RelativePath, fields, string(body))
}

func stageRender(ctx context.Context, bs *BuildState) error {
	for _, node := range bs.Rulesets {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageRender, ctx.Err())
		default:
		}
		path := rulesetPagePath(node.Key)
		bs.Pages[path] = rulesetPage(node)
		slog.Debug("Rendered ruleset page", logfields.Ruleset(node.Key), logfields.Page(path))
	}

	for _, g := range bs.Guidelines {
		path := guidelinePagePath(g)
		bs.Pages[path] = guidelinePage(g)
		slog.Debug("Rendered guideline page", logfields.Guideline(g.ID), logfields.Page(path))
	}
	return nil
}

func stageIndexes(_ context.Context, bs *BuildState) error {
	cfg := bs.Generator.cfg
	ids := make([]string, len(bs.Rulesets))
	for i, node := range bs.Rulesets {
		ids[i] = node.Key
	}

	bs.Index = BuildIndex(bs.Guidelines, ids, IndexOptions{
		Separator:       cfg.Index.GroupSeparator,
		PrimaryPrefix:   cfg.Index.PrimaryPrefix,
		SecondaryPrefix: cfg.Index.SecondaryPrefix,
	})

	pages, err := indexPages(cfg, bs.Index)
	if err != nil {
		return newFatalStageError(StageIndexes, err)
	}
	for path, content := range pages {
		bs.Pages[path] = content
	}
	return nil
}

func stageVerifyLinks(_ context.Context, bs *BuildState) error {
	broken, err := linkcheck.Verify(bs.Pages)
	if err != nil {
		return newWarnStageError(StageVerifyLinks, err)
	}
	for _, b := range broken {
		bs.Report.AddIssue(IssueBrokenLink, StageVerifyLinks, SeverityWarning, b.Page,
			fmt.Sprintf("link %q does not resolve", b.Target), nil)
	}
	if len(broken) > 0 {
		return newWarnStageError(StageVerifyLinks, fmt.Errorf("%d broken internal links", len(broken)))
	}
	return nil
}

func stageAssets(_ context.Context, bs *BuildState) error {
	return writeThemeAssets(filepath.Join(bs.StagingDir, "assets"))
}

// stageFinalize writes all pages into the staging tree and swaps it into
// place, so a failed build never leaves a half-written site.
func stageFinalize(_ context.Context, bs *BuildState) error {
	paths := make([]string, 0, len(bs.Pages))
	for p := range bs.Pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		dst := filepath.Join(bs.StagingDir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return newFatalStageError(StageFinalize, fmt.Errorf("create page directory: %w", err))
		}
		// #nosec G306 -- generated pages are public content
		if err := os.WriteFile(dst, []byte(bs.Pages[p]), 0o644); err != nil {
			return newFatalStageError(StageFinalize, fmt.Errorf("write page %s: %w", p, err))
		}
	}
	bs.Report.Pages = len(paths)

	sitePath := bs.Generator.SitePath()
	if err := os.RemoveAll(sitePath); err != nil {
		return newFatalStageError(StageFinalize, fmt.Errorf("clear site directory: %w", err))
	}
	if err := os.Rename(bs.StagingDir, sitePath); err != nil {
		return newFatalStageError(StageFinalize, fmt.Errorf("swap staging into place: %w", err))
	}
	bs.StagingDir = ""
	return nil
}
