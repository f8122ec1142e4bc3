package hash

import "sort"

// node is one entry of a Hash: a key, its tagged value, and the value's
// own attribute map (spec §3.1).
type node struct {
	key   string
	value Value
	attrs Attributes
}

// Hash is the attributed ordered map. It preserves insertion order for
// iteration while offering O(1) lookup by key via an internal index. See
// the package doc for ownership and concurrency rules.
type Hash struct {
	nodes []*node
	index map[string]int
	sep   byte
}

// Option configures a [Hash] at construction time.
type Option func(*Hash)

// WithSeparator overrides the default '.' path separator.
func WithSeparator(sep byte) Option {
	return func(h *Hash) { h.sep = sep }
}

// New returns an empty Hash.
func New(opts ...Option) *Hash {
	h := &Hash{
		index: make(map[string]int),
		sep:   '.',
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Separator returns the path separator configured for h.
func (h *Hash) Separator() byte { return h.sep }

// Len returns the number of top-level keys in h.
func (h *Hash) Len() int { return len(h.nodes) }

// Keys returns the top-level keys of h in insertion order.
func (h *Hash) Keys() []string {
	keys := make([]string, len(h.nodes))
	for i, n := range h.nodes {
		keys[i] = n.key
	}

	return keys
}

// LexicalKeys returns the top-level keys of h sorted lexically, the
// secondary index alongside Keys' primary insertion order (spec §3.1,
// §4.1: "two orders are exposed").
func (h *Hash) LexicalKeys() []string {
	keys := h.Keys()
	sort.Strings(keys)

	return keys
}

// Each calls fn for every top-level node in insertion order. fn must not
// mutate h.
func (h *Hash) Each(fn func(key string, value Value, attrs Attributes)) {
	for _, n := range h.nodes {
		fn(n.key, n.value, n.attrs)
	}
}

// EachLexical calls fn for every top-level node in lexical key order. fn
// must not mutate h.
func (h *Hash) EachLexical(fn func(key string, value Value, attrs Attributes)) {
	for _, key := range h.LexicalKeys() {
		n, ok := h.nodeAt(key)
		if !ok {
			continue
		}

		fn(n.key, n.value, n.attrs)
	}
}

func (h *Hash) nodeAt(key string) (*node, bool) {
	i, ok := h.index[key]
	if !ok {
		return nil, false
	}

	return h.nodes[i], true
}

// hasKey reports whether key exists at the top level.
func (h *Hash) hasKey(key string) bool {
	_, ok := h.index[key]
	return ok
}

// setTop inserts or replaces the top-level node for key, preserving its
// existing position (and, by default policy, clearing its attributes when
// the variant changes; see [Hash.Set]).
func (h *Hash) setTop(key string, value Value, clearAttrs bool) *node {
	if n, ok := h.nodeAt(key); ok {
		if clearAttrs {
			n.attrs = newAttributes(h.sep)
		}

		n.value = value

		return n
	}

	n := &node{key: key, value: value, attrs: newAttributes(h.sep)}
	h.index[key] = len(h.nodes)
	h.nodes = append(h.nodes, n)

	return n
}

// eraseTop removes the top-level node for key, if present, and reports
// whether it existed. It preserves insertion order of the remaining nodes
// and moves the key to the end on any subsequent re-insertion.
func (h *Hash) eraseTop(key string) bool {
	i, ok := h.index[key]
	if !ok {
		return false
	}

	h.nodes = append(h.nodes[:i], h.nodes[i+1:]...)
	delete(h.index, key)

	for j := i; j < len(h.nodes); j++ {
		h.index[h.nodes[j].key] = j
	}

	return true
}
