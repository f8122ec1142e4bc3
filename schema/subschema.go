package schema

import (
	"fmt"
	"strings"

	"go.karabo.dev/control/hash"
)

// AssemblyRules is the `(accessMode mask, state filter, minimum access
// level)` record used to project sub-schemas (spec §3.4, §4.2).
type AssemblyRules struct {
	AccessMode  AccessMode  // 0 means "no restriction"
	States      []State     // empty means "no restriction"
	AccessLevel AccessLevel // keep iff leaf.requiredAccessLevel <= AccessLevel
}

// project builds a fresh schema retaining only the leaves for which keep
// returns true, carrying their attributes across unchanged and copying
// ancestor node attributes for every surviving intermediate path. Parent
// nodes with no retained descendant are never created, implementing the
// "pruned" half of subSchema/subSchemaByRules/subSchemaByPaths.
func (s *Schema) project(rootName string, keep func(path string) bool) *Schema {
	out := New(rootName)

	for _, p := range s.tree.DeepPaths() {
		if strings.Contains(p, "[") {
			continue
		}

		if !s.IsLeaf(p) || !keep(p) {
			continue
		}

		v, _ := s.tree.Find(p)
		_ = out.tree.Set(p, v)

		if attrs, ok := s.tree.NodeAttributes(p); ok {
			attrs.Each(func(k string, val hash.Value) {
				_ = out.tree.SetAttribute(p, k, val)
			})
		}
	}

	for _, p := range out.tree.DeepPaths() {
		if strings.Contains(p, "[") || out.IsLeaf(p) {
			continue
		}

		if srcAttrs, ok := s.tree.NodeAttributes(p); ok {
			srcAttrs.Each(func(k string, val hash.Value) {
				_ = out.tree.SetAttribute(p, k, val)
			})
		}
	}

	out.rebuildAliasIndex()

	return out
}

// SubSchema returns the sub-schema rooted at path, optionally keeping only
// leaves whose tags attribute intersects tagFilter. Paths in the result are
// relative to path. An empty path returns a filtered copy of the whole
// schema.
func (s *Schema) SubSchema(path string, tagFilter ...string) (*Schema, error) {
	if path != "" && !s.Has(path) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}

	if path != "" && s.IsLeaf(path) {
		return nil, fmt.Errorf("%w: %q is a leaf, not a node", ErrNotNode, path)
	}

	sep := s.tree.Separator()
	prefix := path

	rootName := s.rootName
	if path != "" {
		p, _ := hash.ParsePath(path, sep)
		rootName = p[len(p)-1].Key
	}

	matchesTags := func(leafPath string) bool {
		if len(tagFilter) == 0 {
			return true
		}

		v, ok := s.attrOrZero(leafPath, AttrTags)
		if !ok {
			return false
		}

		tags, _ := v.Seq().([]string)
		for _, t := range tags {
			for _, want := range tagFilter {
				if t == want {
					return true
				}
			}
		}

		return false
	}

	out := s.project(rootName, func(p string) bool {
		if prefix != "" && p != prefix && !strings.HasPrefix(p, prefix+string(sep)) {
			return false
		}

		return matchesTags(p)
	})

	if prefix == "" {
		return out, nil
	}

	// Relativize: rebuild once more, this time stripping the prefix from
	// every retained path.
	rel := New(rootName)

	for _, p := range out.tree.DeepPaths() {
		if strings.Contains(p, "[") || !out.IsLeaf(p) {
			continue
		}

		relPath := strings.TrimPrefix(p, prefix)
		relPath = strings.TrimPrefix(relPath, string(sep))

		if relPath == "" {
			continue
		}

		v, _ := out.tree.Find(p)
		_ = rel.tree.Set(relPath, v)

		if attrs, ok := out.tree.NodeAttributes(p); ok {
			attrs.Each(func(k string, val hash.Value) {
				_ = rel.tree.SetAttribute(relPath, k, val)
			})
		}
	}

	rel.rebuildAliasIndex()

	return rel, nil
}

// SubSchemaByRules filters the schema by access mode mask, allowed-states
// intersection, and minimum required access level (spec §4.2).
func (s *Schema) SubSchemaByRules(rules AssemblyRules) *Schema {
	return s.project(s.rootName, func(p string) bool {
		if rules.AccessMode != 0 {
			if v, ok := s.attrOrZero(p, AttrAccessMode); ok {
				n, _ := v.AsInt32()
				if AccessMode(n)&rules.AccessMode == 0 {
					return false
				}
			}
		}

		if len(rules.States) > 0 {
			v, ok := s.attrOrZero(p, AttrAllowedStates)
			if ok {
				allowed, _ := v.Seq().([]string)
				if len(allowed) > 0 && !intersects(allowed, rules.States) {
					return false
				}
			}
		}

		if v, ok := s.attrOrZero(p, AttrRequiredAccessLevel); ok {
			n, _ := v.AsInt32()
			if AccessLevel(n) > rules.AccessLevel {
				return false
			}
		}

		return true
	})
}

func intersects(allowed []string, states []State) bool {
	for _, a := range allowed {
		for _, st := range states {
			if a == string(st) {
				return true
			}
		}
	}

	return false
}

// SubSchemaByPaths retains exactly the listed paths and their descendants.
func (s *Schema) SubSchemaByPaths(paths []string) *Schema {
	sep := s.tree.Separator()

	return s.project(s.rootName, func(p string) bool {
		for _, want := range paths {
			if p == want || strings.HasPrefix(p, want+string(sep)) {
				return true
			}
		}

		return false
	})
}
