package schema

import "go.karabo.dev/control/hash"

// Merge structurally merges other into s: matching nested nodes recurse,
// leaf attributes are union-merged with per-key overwrite on conflict, and
// paths unknown to s are added (spec §4.2). It delegates directly to
// [hash.Hash.Merge] with [hash.MergeAttributes], since a schema tree's
// merge semantics are exactly its underlying attributed map's.
func (s *Schema) Merge(other *Schema) error {
	if err := s.tree.Merge(other.tree, hash.MergeAttributes, nil); err != nil {
		return err
	}

	s.rebuildAliasIndex()

	return nil
}
