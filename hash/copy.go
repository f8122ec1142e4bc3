package hash

import "sync"

// ClassIDAttr is the runtime attribute a validated value node carries when
// it was copied through as an already-constructed instance of a registered
// class (spec §4.3.3), or when it names the registered deep-copy routine a
// node's composite payload needs (spec §4.1). This is distinct from the
// schema tree's own "classId" attribute, which declares that a schema node
// *describes* such an instance.
const ClassIDAttr = "__classId"

// Clone returns an independent copy of h: nested maps and sequences of
// maps are duplicated recursively, but shared-reference variants
// ([SharedHash], [Value.AsVectorSharedHash]) retain their identity, per the
// ownership model in the package doc. Scalars and attribute values are
// copied by value.
func (h *Hash) Clone() *Hash {
	if h == nil {
		return nil
	}

	out := New(WithSeparator(h.sep))

	for _, n := range h.nodes {
		nn := &node{key: n.key, value: cloneValue(n.value), attrs: n.attrs.clone()}
		out.index[nn.key] = len(out.nodes)
		out.nodes = append(out.nodes, nn)
	}

	return out
}

func cloneValue(v Value) Value {
	switch v.Tag() {
	case TagHash:
		h, _ := v.AsHash()
		return NewHash(h.Clone())
	case TagVectorHash:
		seq, _ := v.AsVectorHash()
		out := make([]*Hash, len(seq))

		for i, h := range seq {
			out[i] = h.Clone()
		}

		return NewVectorHash(out)
	default:
		return v
	}
}

// DeepCopierFunc fully duplicates the composite value carried by a node
// tagged with a given classId attribute (see [RegisterDeepCopier]). It
// exists for class-specific composite leaves (e.g. raw array buffers)
// whose correct duplication is more than a structural recursive copy.
type DeepCopierFunc func(*Hash) (*Hash, error)

var (
	deepCopiersMu sync.RWMutex
	deepCopiers   = map[string]DeepCopierFunc{}
)

// RegisterDeepCopier installs fn as the duplication routine for any
// map-valued node whose [ClassIDAttr] attribute equals classID. It is safe
// to call concurrently
// with [Hash.DeepCopy].
func RegisterDeepCopier(classID string, fn DeepCopierFunc) {
	deepCopiersMu.Lock()
	defer deepCopiersMu.Unlock()

	deepCopiers[classID] = fn
}

func lookupDeepCopier(classID string) (DeepCopierFunc, bool) {
	deepCopiersMu.RLock()
	defer deepCopiersMu.RUnlock()

	fn, ok := deepCopiers[classID]

	return fn, ok
}

// DeepCopy is like [Hash.Clone] but additionally duplicates shared-
// reference variants instead of sharing them, and invokes any deep copier
// registered for a node's [ClassIDAttr] instead of the generic recursive
// copy.
func (h *Hash) DeepCopy() (*Hash, error) {
	if h == nil {
		return nil, nil
	}

	out := New(WithSeparator(h.sep))

	for _, n := range h.nodes {
		var (
			dv  Value
			err error
		)

		if classID, ok := n.attrs.Get(ClassIDAttr); ok {
			if id, isStr := classID.AsString(); isStr {
				if fn, registered := lookupDeepCopier(id); registered {
					if src, isHash := n.value.AsHash(); isHash {
						var copied *Hash

						copied, err = fn(src)
						if err == nil {
							dv = NewHash(copied)
						}
					}
				}
			}
		}

		if err != nil {
			return nil, err
		}

		if dv.IsNone() && n.value.Tag() != TagNone {
			dv, err = deepCopyValue(n.value)
			if err != nil {
				return nil, err
			}
		}

		nn := &node{key: n.key, value: dv, attrs: n.attrs.clone()}
		out.index[nn.key] = len(out.nodes)
		out.nodes = append(out.nodes, nn)
	}

	return out, nil
}

func deepCopyValue(v Value) (Value, error) {
	switch v.Tag() {
	case TagHash:
		h, _ := v.AsHash()

		c, err := h.DeepCopy()
		if err != nil {
			return Value{}, err
		}

		return NewHash(c), nil
	case TagVectorHash:
		seq, _ := v.AsVectorHash()
		out := make([]*Hash, len(seq))

		for i, h := range seq {
			c, err := h.DeepCopy()
			if err != nil {
				return Value{}, err
			}

			out[i] = c
		}

		return NewVectorHash(out), nil
	case TagSharedHash:
		sh, _ := v.AsSharedHash()

		c, err := sh.H.DeepCopy()
		if err != nil {
			return Value{}, err
		}

		return NewSharedHash(&SharedHash{H: c}), nil
	case TagVectorSharedHash:
		seq, _ := v.AsVectorSharedHash()
		out := make([]*SharedHash, len(seq))

		for i, sh := range seq {
			c, err := sh.H.DeepCopy()
			if err != nil {
				return Value{}, err
			}

			out[i] = &SharedHash{H: c}
		}

		return NewVectorSharedHash(out), nil
	default:
		return v, nil
	}
}
