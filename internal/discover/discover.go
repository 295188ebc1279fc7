// Package discover enumerates ruleset and guideline source files on disk.
package discover

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/stationhq/stylebook/internal/config"
	"github.com/stationhq/stylebook/internal/logfields"
)

// Kind identifies what a discovered source file contains.
type Kind string

const (
	KindRuleset   Kind = "ruleset"
	KindGuideline Kind = "guideline"
)

// Source is one discovered input file.
type Source struct {
	Path         string // absolute path
	RelativePath string // path relative to its source directory, slash-separated
	Name         string // file name without extension; the ruleset identifier
	Kind         Kind
}

// Discovery walks the configured source directories.
type Discovery struct {
	rulesetsDir   string
	guidelinesDir string
	include       []string
	exclude       []string
}

// New creates a Discovery over the configured source locations.
func New(sources config.SourcesConfig) *Discovery {
	return &Discovery{
		rulesetsDir:   sources.Rulesets,
		guidelinesDir: sources.Guidelines,
		include:       sources.Include,
		exclude:       sources.Exclude,
	}
}

// Discover returns all matching source files, ruleset sources first, each
// group ordered by relative path. A missing source directory yields zero
// sources for that kind rather than an error: empty input is a valid build.
func (d *Discovery) Discover() ([]Source, error) {
	rulesets, err := d.walk(d.rulesetsDir, KindRuleset, isRulesetFile)
	if err != nil {
		return nil, err
	}
	guidelines, err := d.walk(d.guidelinesDir, KindGuideline, isGuidelineFile)
	if err != nil {
		return nil, err
	}

	slog.Info("Source discovery completed",
		slog.Int("rulesets", len(rulesets)),
		slog.Int("guidelines", len(guidelines)))
	return append(rulesets, guidelines...), nil
}

func (d *Discovery) walk(dir string, kind Kind, wantFile func(string) bool) ([]Source, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Debug("Source directory not found", logfields.Path(dir))
		return nil, nil
	}

	var sources []Source
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		if !wantFile(path) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		if !d.matches(rel) {
			return nil
		}

		sources = append(sources, Source{
			Path:         path,
			RelativePath: rel,
			Name:         strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Kind:         kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s sources: %w", kind, err)
	}

	// Path order keeps discovery order (and so tie order downstream) stable
	// across filesystems.
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].RelativePath < sources[j].RelativePath
	})
	return sources, nil
}

// matches applies include globs (empty list includes everything) then
// exclude globs.
func (d *Discovery) matches(rel string) bool {
	if len(d.include) > 0 {
		included := false
		for _, pattern := range d.include {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pattern := range d.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

func isRulesetFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isGuidelineFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
