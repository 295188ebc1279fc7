package ruleset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stationhq/stylebook/internal/render"
)

// Render walks a mapping node top-down, depth-first, and emits the ordered
// block sequence for it. depth is the heading level of the node itself;
// Subsection recursion threads depth+1 explicitly, and rendered levels are
// capped at render.MaxHeadingLevel while recursion continues past the cap.
//
// Render is pure: it mutates neither the node tree nor any shared state, and
// identical input always yields a deeply equal block sequence.
func Render(key string, node *Node, depth int) []render.Block {
	if node == nil || node.Kind != KindMapping {
		return nil
	}

	blocks := []render.Block{render.Heading{Level: render.ClampLevel(depth), Text: key}}

	switch Classify(key, node) {
	case StrategyRulesTable:
		blocks = append(blocks, childTable(node, "Rule", "Config"))
	case StrategyOptionsTable:
		blocks = append(blocks, childTable(node, "Option", "Value"))
	case StrategyFlatList:
		dl := render.DefinitionList{}
		for _, c := range node.Children {
			dl.Entries = append(dl.Entries, render.Definition{Label: c.Key, Value: FormatValue(c)})
		}
		blocks = append(blocks, dl)
	case StrategySubsection:
		for _, c := range node.Children {
			if c.Kind == KindMapping {
				blocks = append(blocks, Render(c.Key, c, depth+1)...)
				continue
			}
			// Scalar siblings inside a subsection render as single-entry lines
			// so mixed nodes lose nothing.
			blocks = append(blocks, render.DefinitionList{
				Entries: []render.Definition{{Label: c.Key, Value: FormatValue(c)}},
			})
		}
	}
	return blocks
}

// childTable renders the node's immediate children as a two-column table.
// An empty mapping yields a header-only table, not an error.
func childTable(node *Node, left, right string) render.Table {
	t := render.Table{Columns: []string{left, right}}
	for _, c := range node.Children {
		t.Rows = append(t.Rows, []string{c.Key, FormatValue(c)})
	}
	return t
}

// FormatValue renders a node's value for inline display.
//
// Scalars and sequences render as inline-code literals. A mapping appearing
// as a value (a table row, not a walkable node) renders as a one-level brace
// summary like `{severity: warn, max: 500}` — deliberately terminal. Mapping
// values nested deeper than one level are flattened through the same summary,
// which is lossy; kept that way on purpose rather than growing a second
// recursive renderer. Anything unrecognized degrades to a plain string
// conversion so rendering never aborts on unexpected shapes.
func FormatValue(n *Node) string {
	switch n.Kind {
	case KindScalar:
		return "`" + scalarString(n.Scalar) + "`"
	case KindSequence:
		parts := make([]string, len(n.Sequence))
		for i, v := range n.Sequence {
			parts[i] = "`" + scalarString(v) + "`"
		}
		return strings.Join(parts, ", ")
	case KindMapping:
		return braceSummary(n)
	default:
		return fmt.Sprintf("%v", n.Raw)
	}
}

func braceSummary(n *Node) string {
	var b strings.Builder
	b.WriteString("{")
	for i, c := range n.Children {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Key)
		b.WriteString(": ")
		b.WriteString(summaryValue(c))
	}
	b.WriteString("}")
	return b.String()
}

func summaryValue(n *Node) string {
	switch n.Kind {
	case KindScalar:
		return scalarString(n.Scalar)
	case KindSequence:
		parts := make([]string, len(n.Sequence))
		for i, v := range n.Sequence {
			parts[i] = scalarString(v)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMapping:
		return braceSummary(n)
	default:
		return fmt.Sprintf("%v", n.Raw)
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
