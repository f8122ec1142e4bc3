package schema

import (
	"fmt"
	"strings"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/hash/literal"
)

// Attribute keys, verbatim from the schema vocabulary table (§3.4).
const (
	AttrNodeType            = "nodeType"
	AttrLeafType            = "leafType"
	AttrValueType           = "valueType"
	AttrAccessMode          = "accessMode"
	AttrAssignment          = "assignment"
	AttrDefaultValue        = "defaultValue"
	AttrOptions             = "options"
	AttrMinInc              = "minInc"
	AttrMaxInc              = "maxInc"
	AttrMinExc              = "minExc"
	AttrMaxExc              = "maxExc"
	AttrMinSize             = "minSize"
	AttrMaxSize             = "maxSize"
	AttrAllowedStates       = "allowedStates"
	AttrRequiredAccessLevel = "requiredAccessLevel"
	AttrTags                = "tags"
	AttrAlias               = "alias"
	AttrClassID             = "classId"
	AttrDisplayType         = "displayType"
	AttrRowSchema           = "rowSchema"
	AttrArchivePolicy       = "archivePolicy"
	AttrDAQDataType         = "daqDataType"
	AttrDAQPolicy           = "daqPolicy"
	AttrAllowedActions      = "allowedActions"
	AttrUnitEnum            = "unitEnum"
	AttrMetricPrefixEnum    = "metricPrefixEnum"
	// AttrIsAliasing marks a leaf whose none-value is left for downstream
	// resolution rather than type-checked against valueType (spec §4.1.1).
	AttrIsAliasing = "isAliasing"
)

// Schema is an attributed map describing the shape and meaning of a
// configuration [hash.Hash] (spec §3.4, §4.2). It is built directly on
// [hash.Hash]: a schema node *is* a hash node, and the vocabulary above is
// carried as that node's attributes, the same mechanism any other hash
// attribute uses.
type Schema struct {
	rootName string
	tree     *hash.Hash

	aliasToPath map[string]string
	pathToAlias map[string]string
}

// New returns an empty schema rooted at rootName (conventionally a classId).
func New(rootName string) *Schema {
	return &Schema{
		rootName:    rootName,
		tree:        hash.New(),
		aliasToPath: map[string]string{},
		pathToAlias: map[string]string{},
	}
}

// GetRootName returns the schema's root name.
func (s *Schema) GetRootName() string { return s.rootName }

// SetRootName changes the schema's root name.
func (s *Schema) SetRootName(name string) { s.rootName = name }

// Tree exposes the underlying attributed map. Package validator and
// package configurator walk it directly; it is not copy-on-read.
func (s *Schema) Tree() *hash.Hash { return s.tree }

// Has reports whether path resolves to a declared node.
func (s *Schema) Has(path string) bool { return s.tree.Has(path) }

// GetNodeType returns the nodeType attribute at path.
func (s *Schema) GetNodeType(path string) (NodeType, error) {
	v, err := s.attr(path, AttrNodeType)
	if err != nil {
		return "", err
	}

	str, _ := v.AsString()

	return NodeType(str), nil
}

// GetValueType returns the valueType attribute at path, decoded back into
// a [hash.Tag] via package literal's token table.
func (s *Schema) GetValueType(path string) (hash.Tag, error) {
	v, err := s.attr(path, AttrValueType)
	if err != nil {
		return hash.TagNone, err
	}

	tagName, _ := v.AsString()

	t, err := literal.TagOf(tagName)
	if err != nil {
		return hash.TagNone, fmt.Errorf("%w: unknown valueType token %q at %q: %w", ErrInvalidLeaf, tagName, path, err)
	}

	return t, nil
}

// IsLeaf reports whether path is a declared leaf.
func (s *Schema) IsLeaf(path string) bool {
	nt, err := s.GetNodeType(path)
	return err == nil && nt == NodeTypeLeaf
}

func (s *Schema) attr(path, key string) (hash.Value, error) {
	attrs, ok := s.tree.NodeAttributes(path)
	if !ok {
		return hash.Value{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}

	v, ok := attrs.Get(key)
	if !ok {
		return hash.Value{}, fmt.Errorf("%w: %q has no %q attribute", ErrNotFound, path, key)
	}

	return v, nil
}

// attrOrZero returns the attribute value at path, or hash.None() (with
// ok=false) if either the path or the attribute is absent. It never
// returns an error: most accessor predicates treat an absent attribute as
// "not declared" rather than a failure.
func (s *Schema) attrOrZero(path, key string) (hash.Value, bool) {
	attrs, ok := s.tree.NodeAttributes(path)
	if !ok {
		return hash.Value{}, false
	}

	return attrs.Get(key)
}

// GetKeys returns the immediate child keys of path (or the root if path is
// empty), in insertion order.
func (s *Schema) GetKeys(path string) []string {
	if path == "" {
		return s.tree.Keys()
	}

	v, ok := s.tree.Find(path)
	if !ok {
		return nil
	}

	child, ok := v.AsHash()
	if !ok {
		return nil
	}

	return child.Keys()
}

// GetPaths returns every top-level declared path, in declaration order.
func (s *Schema) GetPaths() []string { return s.tree.Paths() }

// GetLexicalPaths returns every top-level declared path sorted lexically,
// the secondary traversal order spec §3.1/§4.1 requires alongside
// declaration order.
func (s *Schema) GetLexicalPaths() []string { return s.tree.LexicalPaths() }

// GetDeepPaths returns every declared path, descending into node and
// composite-handled leaves (spec §4.2).
func (s *Schema) GetDeepPaths() []string { return s.tree.DeepPaths() }

// ensureAncestors walks every proper prefix of path, creating or
// confirming a nodeType=node intermediate at each. It is called by
// AddLeaf/AddNode so a freshly declared deep path always has a fully
// formed chain of node ancestors above it.
func (s *Schema) ensureAncestors(path string) error {
	p, err := hash.ParsePath(path, s.tree.Separator())
	if err != nil {
		return err
	}

	for i := 1; i < len(p); i++ {
		ancestor := p[:i].String(s.tree.Separator())

		if !s.tree.Has(ancestor) {
			if err := s.tree.Set(ancestor, hash.New()); err != nil {
				return err
			}
		}

		if err := s.tree.SetAttribute(ancestor, AttrNodeType, string(NodeTypeNode)); err != nil {
			return err
		}
	}

	return nil
}

func (s *Schema) setAlias(path string, alias hash.Value) {
	if old, ok := s.pathToAlias[path]; ok {
		delete(s.aliasToPath, old)
		delete(s.pathToAlias, path)
	}

	str, ok := alias.AsString()
	if !ok {
		// Non-string aliases are rendered for the reverse index via their
		// comma-joined form, same convention as hash's string conversion.
		conv, err := hash.Convert(alias, hash.TagString)
		if err != nil {
			return
		}

		str, _ = conv.AsString()
	}

	s.pathToAlias[path] = str
	s.aliasToPath[str] = path
}

// PathForAlias resolves an alias back to its declaring path.
func (s *Schema) PathForAlias(alias string) (string, bool) {
	p, ok := s.aliasToPath[alias]
	return p, ok
}

// AliasForPath returns the alias declared at path, if any.
func (s *Schema) AliasForPath(path string) (string, bool) {
	a, ok := s.pathToAlias[path]
	return a, ok
}

// rebuildAliasIndex recomputes the alias registry by scanning every deep
// path. Used after Merge and after the sub-schema projections, which build
// a new tree whose node identities don't match the source schema's.
func (s *Schema) rebuildAliasIndex() {
	s.aliasToPath = map[string]string{}
	s.pathToAlias = map[string]string{}

	for _, p := range s.tree.DeepPaths() {
		if strings.Contains(p, "[") {
			continue
		}

		if v, ok := s.attrOrZero(p, AttrAlias); ok {
			s.setAlias(p, v)
		}
	}
}
