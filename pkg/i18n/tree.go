package i18n

import "strings"

// Tree is a resolved, nested text tree. Interior values are Tree (or
// map[string]any after a JSON round trip); leaves are strings.
//
// Trees returned by the resolver may be shared between callers and must be
// treated as read-only.
type Tree map[string]any

// set assigns value at path, creating intermediate nodes. When found is false only
// the intermediate nodes are created.
func (t Tree) set(path []string, value string, found bool) {
	node := t
	for _, seg := range path[:len(path)-1] {
		child, ok := asTree(node[seg])
		if !ok {
			child = Tree{}
			node[seg] = child
		}
		node = child
	}
	if found {
		node[path[len(path)-1]] = value
	}
}

// Lookup returns the string at path.
func (t Tree) Lookup(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	parent, ok := t.Subtree(path[:len(path)-1]...)
	if !ok {
		return "", false
	}
	s, ok := parent[path[len(path)-1]].(string)
	return s, ok
}

// Get returns the string at a dotted path ("global.topic1.text_hi"), or an empty
// string if there is none.
func (t Tree) Get(dotted string) string {
	s, _ := t.Lookup(strings.Split(dotted, ".")...)
	return s
}

// Subtree returns the node at path. An empty path returns t itself.
func (t Tree) Subtree(path ...string) (Tree, bool) {
	node := t
	for _, seg := range path {
		child, ok := asTree(node[seg])
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

func asTree(v any) (Tree, bool) {
	switch n := v.(type) {
	case Tree:
		return n, true
	case map[string]any:
		return Tree(n), true
	default:
		return nil, false
	}
}
