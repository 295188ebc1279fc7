package render

import (
	"strings"
)

// Markdown serializes an ordered block sequence into markdown page content.
//
// The mapping is deliberately trivial: blocks already carry all content and
// ordering decisions, so this stays a dumb formatter.
func Markdown(blocks []Block) string {
	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch v := blk.(type) {
		case Heading:
			b.WriteString(strings.Repeat("#", ClampLevel(v.Level)))
			b.WriteString(" ")
			b.WriteString(v.Text)
			b.WriteString("\n")
		case Table:
			writeTable(&b, v)
		case DefinitionList:
			for _, e := range v.Entries {
				b.WriteString("- **")
				b.WriteString(e.Label)
				b.WriteString("**: ")
				b.WriteString(e.Value)
				b.WriteString("\n")
			}
		case RawLine:
			b.WriteString(v.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeTable(b *strings.Builder, t Table) {
	writeRow(b, t.Columns)
	sep := make([]string, len(t.Columns))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(b, sep)
	for _, row := range t.Rows {
		writeRow(b, row)
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// escapeCell keeps literal pipes in cell content from breaking table markup.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
