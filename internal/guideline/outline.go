package guideline

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// OutlineEntry is one heading of a guideline body, nested by heading level.
type OutlineEntry struct {
	Title    string
	Level    int
	Children []*OutlineEntry
}

// Outline parses the guideline body and returns its heading tree for
// navigation. The body itself is never modified; this is a read-only pass
// over the markdown AST.
func Outline(body string) []*OutlineEntry {
	src := []byte(body)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	type stackEntry struct {
		node  *OutlineEntry
		level int
	}

	// Root is level 0 so every h1+ nests under it.
	root := &OutlineEntry{}
	stack := []stackEntry{{node: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		entry := &OutlineEntry{Title: string(h.Text(src)), Level: h.Level}

		// Pop until the top of the stack can parent this heading.
		for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, entry)
		stack = append(stack, stackEntry{node: entry, level: h.Level})
	}

	return root.Children
}
