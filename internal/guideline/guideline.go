// Package guideline models annotated standards documents: a metadata header
// (id, title, category, priority, tags) plus an opaque markdown body that is
// passed through untouched beneath a generated page header.
package guideline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Guideline is one annotated standards document.
type Guideline struct {
	ID       string
	Title    string
	Category string
	// Priority orders listings; lower sorts first, ties keep discovery order.
	Priority int
	// Tags keep display order; membership checks ignore order.
	Tags []string
	// Body is opaque to the engine and never reprocessed.
	Body string

	Slug       string
	SourcePath string
}

// ErrMissingMetadata reports a document lacking a required metadata field.
// The failure is local to that document; other documents keep processing.
var ErrMissingMetadata = errors.New("missing required metadata")

// FromMetadata builds a Guideline from already-extracted header fields and the
// remaining body. Scalar fields are normalized: priority accepts int, float,
// or numeric-string forms; tags accept a list or a comma-separated string and
// entries are trimmed.
func FromMetadata(sourcePath string, fields map[string]any, body string) (*Guideline, error) {
	g := &Guideline{Body: body, SourcePath: sourcePath}

	var ok bool
	if g.ID, ok = stringField(fields, "id"); !ok {
		return nil, fmt.Errorf("%w: id (%s)", ErrMissingMetadata, sourcePath)
	}
	if g.Title, ok = stringField(fields, "title"); !ok {
		return nil, fmt.Errorf("%w: title (%s)", ErrMissingMetadata, sourcePath)
	}
	if g.Category, ok = stringField(fields, "category"); !ok {
		return nil, fmt.Errorf("%w: category (%s)", ErrMissingMetadata, sourcePath)
	}
	if g.Priority, ok = intField(fields, "priority"); !ok {
		return nil, fmt.Errorf("%w: priority (%s)", ErrMissingMetadata, sourcePath)
	}
	g.Tags = tagList(fields["tags"])
	g.Slug = Slugify(g.ID)
	return g, nil
}

// HasTag reports tag membership regardless of display order.
func (g *Guideline) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func stringField(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func intField(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// tagList normalizes the tags field. YAML lists arrive as []any; authors also
// write comma-separated strings. Empty entries are dropped after trimming.
func tagList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			raw = append(raw, fmt.Sprintf("%v", item))
		}
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	default:
		return nil
	}

	tags := make([]string, 0, len(raw))
	for _, r := range raw {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// Slugify lowercases an identifier and flattens separators for use as a
// stable file name.
func Slugify(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
