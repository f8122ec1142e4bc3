package hash

import "fmt"

// location pinpoints where a parsed path resolves to, for both plain
// key lookups and indexed (sequence-of-maps) lookups.
type location struct {
	parent  *Hash // hash containing the addressed node
	key     string
	indexed bool
	index   int
}

func (h *Hash) locate(path Path, create bool) (location, error) {
	cur := h

	for i, seg := range path {
		last := i == len(path)-1

		if seg.HasIndex {
			child, err := cur.descendVector(seg, create)
			if err != nil {
				return location{}, err
			}

			if last {
				return location{parent: cur, key: seg.Key, indexed: true, index: seg.Index}, nil
			}

			cur = child

			continue
		}

		if last {
			return location{parent: cur, key: seg.Key}, nil
		}

		child, err := cur.descendMap(seg.Key, create)
		if err != nil {
			return location{}, err
		}

		cur = child
	}

	return location{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
}

func (h *Hash) descendVector(seg Segment, create bool) (*Hash, error) {
	n, ok := h.nodeAt(seg.Key)
	if !ok {
		if !create {
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, seg.Key)
		}

		n = h.setTop(seg.Key, NewVectorHash(nil), true)
	}

	hSeq, ok := n.value.AsVectorHash()
	if !ok {
		if !create {
			return nil, fmt.Errorf("%w: %q is %s, not a sequence of maps", ErrNotSequence, seg.Key, n.value.Tag())
		}

		n = h.setTop(seg.Key, NewVectorHash(nil), true)
		hSeq, _ = n.value.AsVectorHash()
	}

	if seg.Index >= len(hSeq) {
		if !create {
			return nil, fmt.Errorf("%w: index %d into %q (len %d)", ErrPathNotFound, seg.Index, seg.Key, len(hSeq))
		}

		for len(hSeq) <= seg.Index {
			hSeq = append(hSeq, New(WithSeparator(h.sep)))
		}

		n.value = NewVectorHash(hSeq)
	}

	return hSeq[seg.Index], nil
}

func (h *Hash) descendMap(key string, create bool) (*Hash, error) {
	n, ok := h.nodeAt(key)
	if !ok {
		if !create {
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, key)
		}

		n = h.setTop(key, NewHash(New(WithSeparator(h.sep))), true)

		child, _ := n.value.AsHash()

		return child, nil
	}

	child, ok := n.value.AsHash()
	if !ok {
		if !create {
			return nil, fmt.Errorf("%w: %q is %s, not a map", ErrTypeMismatch, key, n.value.Tag())
		}

		// Set forces intermediates into existence, converting an existing
		// non-map node in place; this is the same variant-change path as
		// a direct Set, so attributes are cleared.
		n = h.setTop(key, NewHash(New(WithSeparator(h.sep))), true)
		child, _ = n.value.AsHash()
	}

	return child, nil
}

// getValue returns the value addressed by loc, without mutation.
func (loc location) getValue() (Value, bool) {
	if loc.indexed {
		n, ok := loc.parent.nodeAt(loc.key)
		if !ok {
			return Value{}, false
		}

		hSeq, ok := n.value.AsVectorHash()
		if !ok || loc.index >= len(hSeq) {
			return Value{}, false
		}

		return NewHash(hSeq[loc.index]), true
	}

	n, ok := loc.parent.nodeAt(loc.key)
	if !ok {
		return Value{}, false
	}

	return n.value, true
}

func (loc location) attrs() (Attributes, bool) {
	if loc.indexed {
		return Attributes{}, false
	}

	n, ok := loc.parent.nodeAt(loc.key)
	if !ok {
		return Attributes{}, false
	}

	return n.attrs, true
}

func (loc location) setValue(v Value) error {
	if loc.indexed {
		child, ok := v.AsHash()
		if !ok {
			return fmt.Errorf("%w: indexed path element must be a map, got %s", ErrTypeMismatch, v.Tag())
		}

		n, _ := loc.parent.nodeAt(loc.key)
		hSeq, _ := n.value.AsVectorHash()
		*hSeq[loc.index] = *child

		return nil
	}

	n, exists := loc.parent.nodeAt(loc.key)
	clear := true

	if exists && n.value.Tag() == v.Tag() {
		clear = false
	}

	loc.parent.setTop(loc.key, v, clear)

	return nil
}

func (loc location) erase() bool {
	if loc.indexed {
		n, ok := loc.parent.nodeAt(loc.key)
		if !ok {
			return false
		}

		hSeq, ok := n.value.AsVectorHash()
		if !ok || loc.index >= len(hSeq) {
			return false
		}

		hSeq = append(hSeq[:loc.index], hSeq[loc.index+1:]...)
		n.value = NewVectorHash(hSeq)

		return true
	}

	return loc.parent.eraseTop(loc.key)
}

// Has reports whether the node addressed by path exists, without creating
// intermediates (spec §3.1).
func (h *Hash) Has(path string) bool {
	p, err := ParsePath(path, h.sep)
	if err != nil {
		return false
	}

	loc, err := h.locate(p, false)
	if err != nil {
		return false
	}

	_, ok := loc.getValue()

	return ok
}

// Find returns the value addressed by path without mutating h.
func (h *Hash) Find(path string) (Value, bool) {
	p, err := ParsePath(path, h.sep)
	if err != nil {
		return Value{}, false
	}

	loc, err := h.locate(p, false)
	if err != nil {
		return Value{}, false
	}

	return loc.getValue()
}

// Get returns the value addressed by path, or [ErrPathNotFound] wrapped
// with the path if it does not exist.
func (h *Hash) Get(path string) (Value, error) {
	v, ok := h.Find(path)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}

	return v, nil
}

// Is reports whether the value addressed by path exists and holds tag t.
func (h *Hash) Is(path string, t Tag) bool {
	v, ok := h.Find(path)
	return ok && v.Tag() == t
}

// Set stores value at path, creating intermediate map nodes and sequence
// slots as needed (spec §3.1). value may be a [Value] or any of the Go
// native types [wrapValue] understands. When the addressed node already
// exists and its variant is unchanged, its attributes are preserved;
// otherwise they are cleared (see DESIGN.md for the open-question
// resolution).
func (h *Hash) Set(path string, value any) error {
	v, err := wrapValue(value)
	if err != nil {
		return err
	}

	p, err := ParsePath(path, h.sep)
	if err != nil {
		return err
	}

	loc, err := h.locate(p, true)
	if err != nil {
		return err
	}

	return loc.setValue(v)
}

// Erase removes only the terminal node addressed by path, reporting
// whether it was present. Ancestors are left untouched even if they
// become empty; use [Hash.ErasePath] to collapse them.
func (h *Hash) Erase(path string) bool {
	p, err := ParsePath(path, h.sep)
	if err != nil {
		return false
	}

	loc, err := h.locate(p, false)
	if err != nil {
		return false
	}

	return loc.erase()
}

// ErasePath removes the terminal node addressed by path and then walks
// back up the path, removing any ancestor plain map that becomes empty as
// a consequence. It stops at the first non-empty or indexed ancestor.
func (h *Hash) ErasePath(path string) error {
	p, err := ParsePath(path, h.sep)
	if err != nil {
		return err
	}

	loc, err := h.locate(p, false)
	if err != nil {
		return err
	}

	if !loc.erase() {
		return fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}

	for n := len(p) - 1; n > 0; n-- {
		prefix := p[:n]
		if prefix[len(prefix)-1].HasIndex {
			break
		}

		ploc, err := h.locate(prefix, false)
		if err != nil {
			break
		}

		val, ok := ploc.getValue()
		if !ok {
			break
		}

		child, ok := val.AsHash()
		if !ok || child.Len() != 0 {
			break
		}

		if !ploc.erase() {
			break
		}
	}

	return nil
}

// NodeAttributes returns the attribute map of the node addressed by path. It
// returns false if the path does not resolve to a plain (non-indexed)
// node.
func (h *Hash) NodeAttributes(path string) (Attributes, bool) {
	p, err := ParsePath(path, h.sep)
	if err != nil {
		return Attributes{}, false
	}

	loc, err := h.locate(p, false)
	if err != nil {
		return Attributes{}, false
	}

	return loc.attrs()
}

// SetAttribute sets an attribute on the node addressed by path.
func (h *Hash) SetAttribute(path, key string, value any) error {
	v, err := wrapValue(value)
	if err != nil {
		return err
	}

	p, err := ParsePath(path, h.sep)
	if err != nil {
		return err
	}

	loc, err := h.locate(p, false)
	if err != nil {
		return err
	}

	if loc.indexed {
		return fmt.Errorf("%w: cannot set attribute on an indexed sequence element", ErrTypeMismatch)
	}

	n, ok := loc.parent.nodeAt(loc.key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}

	return n.attrs.Set(key, v)
}

// Paths returns every top-level key as a single-segment path list, in
// insertion order. Use LexicalPaths for the lexically ordered secondary
// index (spec §3.1, §4.1).
func (h *Hash) Paths() []string {
	return h.Keys()
}

// LexicalPaths returns every top-level key as a single-segment path list,
// sorted lexically.
func (h *Hash) LexicalPaths() []string {
	return h.LexicalKeys()
}

// DeepPaths returns every path reachable from h, descending into nested
// maps and sequences of maps, in depth-first insertion order.
func (h *Hash) DeepPaths() []string {
	var out []string

	h.deepPaths("", &out)

	return out
}

func (h *Hash) deepPaths(prefix string, out *[]string) {
	for _, n := range h.nodes {
		p := n.key
		if prefix != "" {
			p = prefix + string(h.sep) + n.key
		}

		*out = append(*out, p)

		switch n.value.Tag() {
		case TagHash:
			child, _ := n.value.AsHash()
			child.deepPaths(p, out)
		case TagVectorHash:
			hSeq, _ := n.value.AsVectorHash()
			for i, child := range hSeq {
				idxPath := fmt.Sprintf("%s[%d]", p, i)
				*out = append(*out, idxPath)
				child.deepPaths(idxPath, out)
			}
		}
	}
}

// NewValue wraps an arbitrary Go native value (or passes an existing
// [Value] through unchanged) using the same coercion [Hash.Set] applies.
// It exists for callers outside this package, such as schema and
// validator, that need to turn a plain Go value into a [Value] without a
// throwaway [Hash].
func NewValue(v any) (Value, error) {
	return wrapValue(v)
}

func wrapValue(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		return t, nil
	case bool:
		return NewBool(t), nil
	case int8:
		return NewInt8(t), nil
	case uint8:
		return NewUint8(t), nil
	case int16:
		return NewInt16(t), nil
	case uint16:
		return NewUint16(t), nil
	case int32:
		return NewInt32(t), nil
	case uint32:
		return NewUint32(t), nil
	case int:
		return NewInt32(int32(t)), nil
	case int64:
		return NewInt64(t), nil
	case uint64:
		return NewUint64(t), nil
	case float32:
		return NewFloat32(t), nil
	case float64:
		return NewFloat64(t), nil
	case complex64:
		return NewComplex64(t), nil
	case complex128:
		return NewComplex128(t), nil
	case string:
		return NewString(t), nil
	case []byte:
		return NewBytes(t), nil
	case []bool:
		return NewVectorBool(t), nil
	case []int8:
		return NewVectorInt8(t), nil
	case []int16:
		return NewVectorInt16(t), nil
	case []uint16:
		return NewVectorUint16(t), nil
	case []int32:
		return NewVectorInt32(t), nil
	case []uint32:
		return NewVectorUint32(t), nil
	case []int64:
		return NewVectorInt64(t), nil
	case []uint64:
		return NewVectorUint64(t), nil
	case []float32:
		return NewVectorFloat32(t), nil
	case []float64:
		return NewVectorFloat64(t), nil
	case []complex64:
		return NewVectorComplex64(t), nil
	case []complex128:
		return NewVectorComplex128(t), nil
	case []string:
		return NewVectorString(t), nil
	case *Hash:
		if t == nil {
			return NewHash(New()), nil
		}

		return NewHash(t), nil
	case []*Hash:
		return NewVectorHash(t), nil
	case *SharedHash:
		return NewSharedHash(t), nil
	case []*SharedHash:
		return NewVectorSharedHash(t), nil
	case nil:
		return None(), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported Go type %T", ErrCastFailed, v)
	}
}
