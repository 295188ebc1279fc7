package ruleset

import "strings"

// Strategy is the tagged render decision for one mapping node.
type Strategy string

const (
	// StrategyRulesTable renders immediate children as a Rule/Config table.
	StrategyRulesTable Strategy = "rules_table"
	// StrategyOptionsTable renders immediate children as an Option/Value table.
	StrategyOptionsTable Strategy = "options_table"
	// StrategyFlatList renders immediate children as bold-label value lines.
	StrategyFlatList Strategy = "flat_list"
	// StrategySubsection emits a heading and recurses into each child.
	StrategySubsection Strategy = "subsection"
)

// classifier pairs a named predicate with the strategy it selects.
type classifier struct {
	name  string
	match func(key string, node *Node) bool
	pick  Strategy
}

// classifiers is the ordered decision list. Order is contract: a node can
// satisfy several predicates and the first match wins, so RulesTable beats
// OptionsTable beats FlatList, with Subsection as the fallthrough.
var classifiers = []classifier{
	{name: "rules_key", match: isRulesKey, pick: StrategyRulesTable},
	{name: "require_key", match: isRequireKey, pick: StrategyOptionsTable},
	{name: "leaf_children", match: hasOnlyLeafChildren, pick: StrategyFlatList},
}

// Classify decides the render strategy for a mapping node at the given key.
func Classify(key string, node *Node) Strategy {
	for _, c := range classifiers {
		if c.match(key, node) {
			return c.pick
		}
	}
	return StrategySubsection
}

// isRulesKey matches keys that name a rule set: the substring "rules"
// anywhere in the key (case-sensitive) or the literal ".rules" suffix.
func isRulesKey(key string, _ *Node) bool {
	return strings.Contains(key, "rules") || strings.HasSuffix(key, ".rules")
}

// isRequireKey matches keys that name a required-options set.
func isRequireKey(key string, _ *Node) bool {
	return strings.Contains(key, "require") || strings.HasSuffix(key, ".require")
}

// hasOnlyLeafChildren reports whether no immediate child is itself a walkable
// mapping. Raw children count as leaves: they degrade to string formatting.
func hasOnlyLeafChildren(_ string, node *Node) bool {
	for _, c := range node.Children {
		if c.Kind == KindMapping {
			return false
		}
	}
	return true
}
