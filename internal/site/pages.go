package site

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/stationhq/stylebook/internal/config"
	"github.com/stationhq/stylebook/internal/guideline"
	"github.com/stationhq/stylebook/internal/render"
	"github.com/stationhq/stylebook/internal/ruleset"
)

func rulesetPagePath(key string) string {
	return "rulesets/" + guideline.Slugify(key) + ".md"
}

func guidelinePagePath(g *guideline.Guideline) string {
	return "guidelines/" + g.Slug + ".md"
}

func rulesetPage(node *ruleset.Node) string {
	return render.Markdown(ruleset.Render(node.Key, node, 1))
}

// guidelinePage emits a generated header and then the body verbatim. The body
// is author content and is never reflowed or rewritten.
func guidelinePage(g *guideline.Guideline) string {
	entries := []render.Definition{
		{Label: "id", Value: fmt.Sprintf("`%s`", g.ID)},
		{Label: "category", Value: g.Category},
		{Label: "priority", Value: fmt.Sprintf("%d", g.Priority)},
	}
	if len(g.Tags) > 0 {
		entries = append(entries, render.Definition{Label: "tags", Value: strings.Join(g.Tags, ", ")})
	}

	blocks := []render.Block{
		render.Heading{Level: 1, Text: g.Title},
		render.DefinitionList{Entries: entries},
	}
	if outline := guideline.Outline(g.Body); len(outline) > 1 {
		blocks = append(blocks, render.Heading{Level: 2, Text: "Contents"})
		blocks = append(blocks, outlineBlock(outline))
	}
	header := render.Markdown(blocks)

	body := strings.TrimLeft(g.Body, "\n")
	if body == "" {
		return header
	}
	return header + "\n" + body
}

// outlineBlock flattens the heading tree into an indented bullet list.
func outlineBlock(outline []*guideline.OutlineEntry) render.Block {
	var b strings.Builder
	var walk func(entries []*guideline.OutlineEntry, indent string)
	walk = func(entries []*guideline.OutlineEntry, indent string) {
		for _, e := range entries {
			b.WriteString(indent)
			b.WriteString("- ")
			b.WriteString(e.Title)
			b.WriteString("\n")
			walk(e.Children, indent+"  ")
		}
	}
	walk(outline, "")
	return render.RawLine{Text: strings.TrimSuffix(b.String(), "\n")}
}

var pageFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"titleCase": func(s string) string {
		words := strings.FieldsFunc(s, func(r rune) bool {
			return r == '-' || r == '_' || r == ' '
		})
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	},
	"slug": guideline.Slugify,
}

var homeTemplate = template.Must(template.New("home").Funcs(pageFuncs).Parse(
	`# {{ .Title }}
{{ if .Description }}
{{ .Description }}
{{ end }}
## Guidelines by category
{{ range .Index.Categories }}
### {{ titleCase . }}
{{ range index $.Index.ByCategory . }}- [{{ .Title }}](guidelines/{{ .Slug }}.md)
{{ end }}{{ end }}
See also the [priority listing](priority.md) and the [ruleset index](rulesets/index.md).
`))

var priorityTemplate = template.Must(template.New("priority").Funcs(pageFuncs).Parse(
	`# Guidelines by priority

| Priority | Guideline | Category |
| --- | --- | --- |
{{ range .Index.ByPriority }}| {{ .Priority }} | [{{ .Title }}](guidelines/{{ .Slug }}.md) | {{ .Category }} |
{{ end }}`))

var rulesetIndexTemplate = template.Must(template.New("rulesets").Funcs(pageFuncs).Parse(
	`# Ruleset index
{{ range .Index.Prefixes }}
## {{ titleCase . }}
{{ range index $.Index.ByPrefix . }}- [{{ . }}]({{ slug . }}.md)
{{ end }}{{ end }}{{ if .Index.PrimaryListing }}
## {{ titleCase .PrimaryPrefix }} configurations
{{ range .Index.PrimaryListing }}- [{{ . }}]({{ slug . }}.md)
{{ end }}{{ end }}{{ if .Index.SecondaryListing }}
## {{ titleCase .SecondaryPrefix }} configurations
{{ range .Index.SecondaryListing }}- [{{ . }}]({{ slug . }}.md)
{{ end }}{{ end }}`))

type indexPageData struct {
	Title           string
	Description     string
	PrimaryPrefix   string
	SecondaryPrefix string
	Index           *Index
}

// indexPages renders the generated listing pages from the computed index.
func indexPages(cfg *config.Config, idx *Index) (map[string]string, error) {
	data := indexPageData{
		Title:           cfg.Title,
		Description:     cfg.Description,
		PrimaryPrefix:   cfg.Index.PrimaryPrefix,
		SecondaryPrefix: cfg.Index.SecondaryPrefix,
		Index:           idx,
	}

	pages := make(map[string]string, 3)
	for path, tmpl := range map[string]*template.Template{
		"index.md":          homeTemplate,
		"priority.md":       priorityTemplate,
		"rulesets/index.md": rulesetIndexTemplate,
	} {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", path, err)
		}
		pages[path] = buf.String()
	}
	return pages, nil
}
