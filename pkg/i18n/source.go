package i18n

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// itemNameKey is the reserved key holding an item's name.
const itemNameKey = "name"

// Item is a single translatable key with one value per locale tag.
type Item struct {
	Name   string
	Values map[string]string
}

// Value returns the item's text for the given tag.
func (it Item) Value(tag string) (string, bool) {
	v, ok := it.Values[tag]
	return v, ok
}

// node is either a mapping (children) or a leaf holding items.
type node struct {
	children map[string]*node
	items    []Item
	leaf     bool
}

// Source is the parsed, immutable translation source.
// It is safe for concurrent use.
type Source struct {
	root    *node
	version string
}

// NewSource builds a Source from a generic decoded document, such as the result of
// unmarshalling YAML or JSON into map[string]any.
//
// Nodes that are neither mappings nor sequences are skipped, as are sequence
// elements that are not mappings or have no name. Scalar item values are
// stringified; null values are treated as absent.
func NewSource(raw map[string]any) *Source {
	root := buildMapping(raw)
	s := &Source{root: root}
	s.version = fingerprint(root)
	return s
}

// Decode parses a YAML (or JSON) document into a Source.
func Decode(data []byte) (*Source, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	return NewSource(raw), nil
}

// DecodeReader reads r fully and decodes it.
func DecodeReader(r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return Decode(data)
}

// LoadFS decodes the named file from fsys.
func LoadFS(fsys fs.FS, name string) (*Source, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	src, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", name, err)
	}
	return src, nil
}

// Version identifies the content of the source. Two sources with the same
// translations have the same version.
func (s *Source) Version() string {
	if s == nil {
		return ""
	}
	return s.version
}

// Len returns the number of items in the source.
func (s *Source) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	s.walk(func(_ []string, items []Item) {
		n += len(items)
	})
	return n
}

// walk visits every leaf in depth-first order with sorted sibling keys.
func (s *Source) walk(fn func(path []string, items []Item)) {
	if s == nil || s.root == nil {
		return
	}
	walkNode(s.root, nil, fn)
}

func walkNode(n *node, path []string, fn func(path []string, items []Item)) {
	if n.leaf {
		fn(path, n.items)
		return
	}
	for _, key := range slices.Sorted(maps.Keys(n.children)) {
		walkNode(n.children[key], append(path[:len(path):len(path)], key), fn)
	}
}

func buildMapping(m map[string]any) *node {
	n := &node{children: make(map[string]*node, len(m))}
	for key, value := range m {
		if child := buildNode(value); child != nil {
			n.children[key] = child
		}
	}
	return n
}

func buildNode(value any) *node {
	switch v := value.(type) {
	case map[string]any:
		return buildMapping(v)
	case map[any]any:
		return buildMapping(stringKeys(v))
	case []any:
		return &node{leaf: true, items: buildItems(v)}
	default:
		return nil
	}
}

func buildItems(seq []any) []Item {
	items := make([]Item, 0, len(seq))
	for _, elem := range seq {
		var m map[string]any
		switch v := elem.(type) {
		case map[string]any:
			m = v
		case map[any]any:
			m = stringKeys(v)
		default:
			continue
		}

		name, ok := scalarString(m[itemNameKey])
		if !ok || name == "" {
			continue
		}

		item := Item{Name: name, Values: make(map[string]string, len(m)-1)}
		for tag, raw := range m {
			if tag == itemNameKey {
				continue
			}
			if s, ok := scalarString(raw); ok {
				item.Values[tag] = s
			}
		}
		items = append(items, item)
	}
	return items
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case map[string]any, map[any]any, []any:
		return "", false
	default:
		return fmt.Sprint(s), true
	}
}

func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}

// fingerprint hashes a canonical walk of the tree.
func fingerprint(root *node) string {
	h := sha256.New()
	walkNode(root, nil, func(path []string, items []Item) {
		for _, seg := range path {
			fmt.Fprintf(h, "%d:%s/", len(seg), seg)
		}
		for _, it := range items {
			fmt.Fprintf(h, "|%d:%s", len(it.Name), it.Name)
			for _, tag := range slices.Sorted(maps.Keys(it.Values)) {
				v := it.Values[tag]
				fmt.Fprintf(h, ";%d:%s=%d:%s", len(tag), tag, len(v), v)
			}
		}
		h.Write([]byte{'\n'})
	})
	return hex.EncodeToString(h.Sum(nil))
}
