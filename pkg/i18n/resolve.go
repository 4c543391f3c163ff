package i18n

// Selection is one resolved item: its structured path (segments then item name)
// and the selected text, if any.
type Selection struct {
	Path  []string
	Value string
	Found bool
}

// Select returns the item's value under the first tag of chain that the item
// provides.
func Select(item Item, chain []string) (string, bool) {
	for _, tag := range chain {
		if v, ok := item.Values[tag]; ok {
			return v, true
		}
	}
	return "", false
}

// Selections flattens the source into one Selection per item, in a deterministic
// order (sorted path segments, then item declaration order).
func Selections(src *Source, chain []string) []Selection {
	var out []Selection
	src.walk(func(path []string, items []Item) {
		for _, item := range items {
			p := make([]string, len(path)+1)
			copy(p, path)
			p[len(path)] = item.Name

			v, ok := Select(item, chain)
			out = append(out, Selection{Path: p, Value: v, Found: ok})
		}
	})
	return out
}

// Resolve builds the localized text tree for chain. Items without a value for
// any tag in chain are left out, but their parent nodes are still created.
// The source is not modified.
func Resolve(src *Source, chain []string) Tree {
	tree := Tree{}
	for _, sel := range Selections(src, chain) {
		tree.set(sel.Path, sel.Value, sel.Found)
	}
	return tree
}
