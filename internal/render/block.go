// Package render defines the block model a rendered page is made of and the
// markdown serializer that turns a block sequence into page content.
//
// Blocks are plain values: producing them has no side effects and serializing
// the same sequence twice yields identical bytes, which is what keeps full
// rebuilds byte-for-byte stable.
package render

// MaxHeadingLevel caps rendered heading depth. Nesting beyond this level keeps
// recursing but reuses the cap, so deep config trees never emit h5+/invalid
// heading markup.
const MaxHeadingLevel = 4

// Block is one ordered unit of rendered output.
type Block interface {
	block()
}

// Heading is a section heading at the given level (1-based).
type Heading struct {
	Level int
	Text  string
}

// Table is a column-headed table. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// DefinitionList renders label/value pairs as bold-label lines.
type DefinitionList struct {
	Entries []Definition
}

// Definition is a single label→value entry of a DefinitionList.
type Definition struct {
	Label string
	Value string
}

// RawLine is passed through to the output verbatim.
type RawLine struct {
	Text string
}

func (Heading) block()        {}
func (Table) block()          {}
func (DefinitionList) block() {}
func (RawLine) block()        {}

// ClampLevel bounds a heading level to [1, MaxHeadingLevel].
func ClampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxHeadingLevel {
		return MaxHeadingLevel
	}
	return level
}
