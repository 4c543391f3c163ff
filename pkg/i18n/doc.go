// Package i18n turns Accept-Language headers into preference chains and resolves
// hierarchical translation sources into localized text trees.
//
// The package has no state: a Source is immutable once decoded, and both
// PreferenceChain and Resolve are pure functions, so everything here is safe for
// concurrent use.
//
// # Source Format
//
// A translation source is a nested mapping. Interior keys group translations; the
// leaves are sequences of items, each with a name and one value per locale tag:
//
//	global:
//	  topic1:
//	    - name: text_hi
//	      en-us: Hi
//	      fr: Salut
//	    - name: text_apple
//	      zh-tw: 一個蘋果
//	      all: An apple
//
// The special tag "all" is a language-independent fallback.
//
// Decode parses YAML or JSON:
//
//	src, err := i18n.Decode(data)
//	if err != nil {
//		// errors.Is(err, i18n.ErrInvalidSource)
//	}
//
// Nodes that are neither mappings nor sequences are skipped rather than
// rejected, so a partially malformed source still yields partial results.
//
// # Preference Chains
//
// PreferenceChain orders the tags of a header by quality value, keeping
// declaration order for ties and placing a variant ("zh-tw") ahead of its bare
// language ("zh"). The chain always ends with "all", "en", "en-us":
//
//	i18n.PreferenceChain("fr, en-us")
//	// [fr en-us en all en en-us]
//
// Malformed entries are dropped instead of failing the whole header.
//
// # Resolution
//
// Resolve picks, for every item, the value under the first chain tag the item
// provides and returns a nested Tree mirroring the source layout:
//
//	tree := i18n.Resolve(src, i18n.PreferenceChain("fr, en-us"))
//	tree.Get("global.topic1.text_hi") // "Salut"
//
// Items with no matching tag are omitted from the tree. Paths are handled as
// segment slices internally, so no header or key content can alter the tree
// structure.
package i18n
