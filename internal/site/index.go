package site

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/stationhq/stylebook/internal/guideline"
)

// IndexOptions configures the cross-document groupings.
type IndexOptions struct {
	// Separator splits a config identifier into prefix/suffix at its first
	// occurrence. Identifiers without it form own-prefix groups of one.
	Separator string
	// PrimaryPrefix and SecondaryPrefix select the two language listing
	// partitions. Identifiers matching neither appear in neither.
	PrimaryPrefix   string
	SecondaryPrefix string
}

// Index is the read-only aggregation over all guidelines and top-level
// ruleset identifiers. It is computed once per build from the full input set
// and discarded after the write phase.
type Index struct {
	// ByPriority is the stable ascending priority ordering; ties keep
	// discovery order.
	ByPriority []*guideline.Guideline
	// Categories lists category names in first-seen order.
	Categories []string
	ByCategory map[string][]*guideline.Guideline
	// Prefixes lists identifier prefixes in first-seen order.
	Prefixes []string
	ByPrefix map[string][]string
	// PrimaryListing and SecondaryListing are alphabetically collated.
	PrimaryListing   []string
	SecondaryListing []string
}

// BuildIndex computes the site index. Empty guideline or identifier sets
// produce valid empty groupings; no error path exists here.
func BuildIndex(guidelines []*guideline.Guideline, rulesetIDs []string, opts IndexOptions) *Index {
	if opts.Separator == "" {
		opts.Separator = "."
	}

	idx := &Index{
		ByCategory: make(map[string][]*guideline.Guideline),
		ByPrefix:   make(map[string][]string),
	}

	idx.ByPriority = make([]*guideline.Guideline, len(guidelines))
	copy(idx.ByPriority, guidelines)
	sort.SliceStable(idx.ByPriority, func(i, j int) bool {
		return idx.ByPriority[i].Priority < idx.ByPriority[j].Priority
	})

	for _, g := range guidelines {
		if _, seen := idx.ByCategory[g.Category]; !seen {
			idx.Categories = append(idx.Categories, g.Category)
		}
		idx.ByCategory[g.Category] = append(idx.ByCategory[g.Category], g)
	}

	for _, id := range rulesetIDs {
		prefix := id
		if i := strings.Index(id, opts.Separator); i >= 0 {
			prefix = id[:i]
		}
		if _, seen := idx.ByPrefix[prefix]; !seen {
			idx.Prefixes = append(idx.Prefixes, prefix)
		}
		idx.ByPrefix[prefix] = append(idx.ByPrefix[prefix], id)
	}

	idx.PrimaryListing = languageListing(rulesetIDs, opts.PrimaryPrefix)
	idx.SecondaryListing = languageListing(rulesetIDs, opts.SecondaryPrefix)
	return idx
}

// languageListing collects identifiers under a language prefix, collated
// case-insensitively so listing order is stable across inputs.
func languageListing(ids []string, prefix string) []string {
	if prefix == "" {
		return nil
	}
	var out []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	c := collate.New(language.English, collate.IgnoreCase)
	c.SortStrings(out)
	return out
}
