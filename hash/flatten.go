package hash

import "fmt"

// Flatten returns a new Hash whose top-level keys are the full separator-
// joined (and bracket-indexed) paths of every leaf in h, with nested maps
// and sequences of maps expanded away. `unflatten(flatten(m))` is
// structurally similar to m (spec §8).
func (h *Hash) Flatten() *Hash {
	out := New(WithSeparator(h.sep))
	h.flattenInto("", out)

	return out
}

func (h *Hash) flattenInto(prefix string, out *Hash) {
	for _, n := range h.nodes {
		p := n.key
		if prefix != "" {
			p = prefix + string(h.sep) + n.key
		}

		switch n.value.Tag() {
		case TagHash:
			child, _ := n.value.AsHash()
			child.flattenInto(p, out)
		case TagVectorHash:
			hSeq, _ := n.value.AsVectorHash()
			for i, child := range hSeq {
				child.flattenInto(fmt.Sprintf("%s[%d]", p, i), out)
			}
		default:
			nn := out.setTop(p, n.value, true)
			nn.attrs = n.attrs.clone()
		}
	}
}

// Unflatten reverses [Hash.Flatten]: it rebuilds nested maps and sequences
// of maps from a flat hash of full paths.
func Unflatten(flat *Hash) (*Hash, error) {
	out := New(WithSeparator(flat.sep))

	for _, n := range flat.nodes {
		if err := out.Set(n.key, n.value); err != nil {
			return nil, err
		}

		if n.attrs.Len() > 0 {
			if err := out.applyNodeAttrs(n.key, n.attrs, ReplaceAttributes, false); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
