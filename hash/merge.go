package hash

import "sort"

// MergePolicy governs how attributes on nodes that already exist in the
// merge target are combined with the incoming node's attributes (spec
// §3.2). Attributes on newly introduced nodes are always copied from the
// source regardless of policy.
type MergePolicy int

const (
	// ReplaceAttributes overwrites a pre-existing node's attribute map
	// wholesale with the source node's.
	ReplaceAttributes MergePolicy = iota
	// MergeAttributes unions a pre-existing node's attribute map with the
	// source's, with the source winning per-key conflicts.
	MergeAttributes
)

// SelectedPaths restricts [Hash.Merge] to a specific set of paths from the
// source, each possibly carrying a bracketed sequence index. When non-
// empty, it is the sole knob for taking indexed subsets of a
// sequence-of-maps value: multiple selected indices under the same vector
// path are compacted to a dense prefix in ascending index order.
type SelectedPaths []string

// Merge overlays other onto h in place (spec §3.2). With no selected
// paths, every path in other is merged: scalar leaves and whole
// sequences-of-maps are replaced, nested maps recurse. With selected
// paths, only the listed paths (and, for indexed paths, only the selected
// sequence elements) are taken from other; everything else in other is
// ignored. Invalid indices in selectedPaths are silently skipped.
func (h *Hash) Merge(other *Hash, policy MergePolicy, selected SelectedPaths) error {
	if len(selected) == 0 {
		return h.mergeAll(other, policy)
	}

	return h.mergeSelected(other, policy, selected)
}

func (h *Hash) mergeAll(other *Hash, policy MergePolicy) error {
	for _, n := range other.nodes {
		existing, existed := h.nodeAt(n.key)

		if existed && existing.value.Tag() == TagHash && n.value.Tag() == TagHash {
			tgtChild, _ := existing.value.AsHash()
			srcChild, _ := n.value.AsHash()

			if err := tgtChild.Merge(srcChild, policy, nil); err != nil {
				return err
			}

			applyAttrPolicy(&existing.attrs, n.attrs, policy)

			continue
		}

		var oldAttrs Attributes
		if existed {
			oldAttrs = existing.attrs
		}

		nn := h.setTop(n.key, cloneValueForMerge(n.value), true)

		if existed {
			nn.attrs = oldAttrs
			applyAttrPolicy(&nn.attrs, n.attrs, policy)
		} else {
			nn.attrs = n.attrs.clone()
		}
	}

	return nil
}

func (h *Hash) mergeSelected(other *Hash, policy MergePolicy, selected SelectedPaths) error {
	type vecSelection struct {
		indices []int
	}

	vecGroups := map[string]*vecSelection{}

	var plain []string

	for _, sp := range selected {
		path, err := ParsePath(sp, h.sep)
		if err != nil {
			return err
		}

		last := path[len(path)-1]
		if !last.HasIndex {
			plain = append(plain, sp)

			continue
		}

		prefix := Path(append(append(Path{}, path[:len(path)-1]...), Segment{Key: last.Key})).String(h.sep)

		g, ok := vecGroups[prefix]
		if !ok {
			g = &vecSelection{}
			vecGroups[prefix] = g
		}

		g.indices = append(g.indices, last.Index)
	}

	for _, sp := range plain {
		v, ok := other.Find(sp)
		if !ok {
			continue
		}

		existing, existed := h.Find(sp)
		if existed {
			if ev, ok1 := existing.AsHash(); ok1 {
				if nv, ok2 := v.AsHash(); ok2 {
					if err := ev.Merge(nv, policy, nil); err != nil {
						return err
					}

					continue
				}
			}
		}

		if err := h.Set(sp, cloneValueForMerge(v)); err != nil {
			return err
		}

		if oattrs, ok := other.NodeAttributes(sp); ok {
			if err := h.applyNodeAttrs(sp, oattrs, policy, existed); err != nil {
				return err
			}
		}
	}

	for prefix, g := range vecGroups {
		srcVal, ok := other.Find(prefix)
		if !ok {
			continue
		}

		hSeq, ok := srcVal.AsVectorHash()
		if !ok {
			continue
		}

		indices := append([]int{}, g.indices...)
		sort.Ints(indices)

		var newSeq []*Hash

		for _, idx := range indices {
			if idx < 0 || idx >= len(hSeq) {
				continue
			}

			newSeq = append(newSeq, hSeq[idx].Clone())
		}

		if len(newSeq) == 0 {
			continue
		}

		if err := h.Set(prefix, newSeq); err != nil {
			return err
		}
	}

	return nil
}

func (h *Hash) applyNodeAttrs(path string, src Attributes, policy MergePolicy, existed bool) error {
	p, err := ParsePath(path, h.sep)
	if err != nil {
		return err
	}

	loc, err := h.locate(p, false)
	if err != nil || loc.indexed {
		return nil
	}

	n, ok := loc.parent.nodeAt(loc.key)
	if !ok {
		return nil
	}

	if !existed {
		n.attrs = src.clone()

		return nil
	}

	applyAttrPolicy(&n.attrs, src, policy)

	return nil
}

func applyAttrPolicy(dst *Attributes, src Attributes, policy MergePolicy) {
	if policy == ReplaceAttributes {
		*dst = src.clone()

		return
	}

	src.Each(func(key string, v Value) {
		_ = dst.Set(key, v)
	})
}

func cloneValueForMerge(v Value) Value {
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

// Subtract removes from h every path present in other (spec §3.2). A
// source entry whose value is an empty map leaves the corresponding
// target sub-map present but empty, rather than erasing it; a non-empty
// map entry over a target map is subtracted recursively from that map;
// any other source entry erases the whole target node.
func (h *Hash) Subtract(other *Hash) error {
	for _, n := range other.nodes {
		tn, exists := h.nodeAt(n.key)
		if !exists {
			continue
		}

		if n.value.Tag() == TagHash && tn.value.Tag() == TagHash {
			srcChild, _ := n.value.AsHash()
			tgtChild, _ := tn.value.AsHash()

			if srcChild.Len() == 0 {
				cleared := New(WithSeparator(tgtChild.sep))
				*tgtChild = *cleared

				continue
			}

			if err := tgtChild.Subtract(srcChild); err != nil {
				return err
			}

			continue
		}

		h.eraseTop(n.key)
	}

	return nil
}
