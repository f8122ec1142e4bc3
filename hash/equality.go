package hash

import "reflect"

// Similar reports structural similarity (spec §3.1-I5): same shape, same
// tags, same values, with both node order and attributes ignored.
func (h *Hash) Similar(other *Hash) bool {
	if h == nil || other == nil {
		return h == other
	}

	if h.Len() != other.Len() {
		return false
	}

	for _, n := range h.nodes {
		ov, ok := other.nodeAt(n.key)
		if !ok {
			return false
		}

		if !valuesEqual(n.value, ov.value, false, false) {
			return false
		}
	}

	return true
}

// FullyEqual reports full equality (spec §3.1-I5): structural similarity
// plus matching attribute values on every node. When checkOrder is true,
// insertion order must also match.
func (h *Hash) FullyEqual(other *Hash, checkOrder bool) bool {
	if h == nil || other == nil {
		return h == other
	}

	if h.Len() != other.Len() {
		return false
	}

	if checkOrder {
		for i, n := range h.nodes {
			if other.nodes[i].key != n.key {
				return false
			}
		}
	}

	for _, n := range h.nodes {
		ov, ok := other.nodeAt(n.key)
		if !ok {
			return false
		}

		if !valuesEqual(n.value, ov.value, true, checkOrder) {
			return false
		}

		if !attrsEqual(n.attrs, ov.attrs) {
			return false
		}
	}

	return true
}

func attrsEqual(a, b Attributes) bool {
	if a.Len() != b.Len() {
		return false
	}

	equal := true
	a.Each(func(key string, av Value) {
		bv, ok := b.Get(key)
		if !ok || !valuesEqual(av, bv, true, false) {
			equal = false
		}
	})

	return equal
}

func valuesEqual(a, b Value, compareAttrs, checkOrder bool) bool {
	if a.Tag() != b.Tag() {
		return false
	}

	switch a.Tag() {
	case TagHash:
		ah, _ := a.AsHash()
		bh, _ := b.AsHash()

		if compareAttrs {
			return ah.FullyEqual(bh, checkOrder)
		}

		return ah.Similar(bh)
	case TagVectorHash:
		aSeq, _ := a.AsVectorHash()
		bSeq, _ := b.AsVectorHash()

		if len(aSeq) != len(bSeq) {
			return false
		}

		for i := range aSeq {
			if compareAttrs {
				if !aSeq[i].FullyEqual(bSeq[i], checkOrder) {
					return false
				}
			} else if !aSeq[i].Similar(bSeq[i]) {
				return false
			}
		}

		return true
	case TagSharedHash:
		ash, _ := a.AsSharedHash()
		bsh, _ := b.AsSharedHash()

		if ash == nil || bsh == nil {
			return ash == bsh
		}

		if compareAttrs {
			return ash.H.FullyEqual(bsh.H, checkOrder)
		}

		return ash.H.Similar(bsh.H)
	case TagVectorSharedHash:
		aSeq, _ := a.AsVectorSharedHash()
		bSeq, _ := b.AsVectorSharedHash()

		if len(aSeq) != len(bSeq) {
			return false
		}

		for i := range aSeq {
			if compareAttrs {
				if !aSeq[i].H.FullyEqual(bSeq[i].H, checkOrder) {
					return false
				}
			} else if !aSeq[i].H.Similar(bSeq[i].H) {
				return false
			}
		}

		return true
	default:
		return reflect.DeepEqual(a.Raw(), b.Raw())
	}
}
