package schema

import (
	"fmt"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/hash/literal"
)

// leafSpec accumulates the attributes a chain of LeafOptions sets before
// AddLeaf commits them to the tree in one pass.
type leafSpec struct {
	valueType  *hash.Tag
	leafType   LeafType
	accessMode AccessMode
	assignment Assignment

	defaultValue   any
	hasDefault     bool
	options        []any
	minInc, maxInc any
	minExc, maxExc any
	minSize        *int
	maxSize        *int
	allowedStates  []State
	accessLevel    *AccessLevel
	tags           []string
	alias          any
	hasAlias       bool
	classID        string
	displayType    DisplayType
	rowSchema      *Schema
	archivePolicy  ArchivePolicy
	daqDataType    string
	daqPolicy      string
	allowedActions []string
	unitEnum       string
	metricPrefix   string
	isAliasing     bool
}

// LeafOption configures one attribute of a leaf being declared through
// [Schema.AddLeaf], mirroring the functional-option style used for
// [hash.Option] elsewhere in this module.
type LeafOption func(*leafSpec)

// WithValueType declares the leaf's Tagged variant. Every leaf must carry
// one (invariant S1); AddLeaf rejects a spec missing it.
func WithValueType(t hash.Tag) LeafOption {
	return func(s *leafSpec) { s.valueType = &t }
}

// WithLeafType overrides the default property leaf type.
func WithLeafType(t LeafType) LeafOption {
	return func(s *leafSpec) { s.leafType = t }
}

// WithAccessMode sets the leaf's access mode mask.
func WithAccessMode(m AccessMode) LeafOption {
	return func(s *leafSpec) { s.accessMode = m }
}

// WithAssignment sets whether the leaf is mandatory, optional, or internal.
func WithAssignment(a Assignment) LeafOption {
	return func(s *leafSpec) { s.assignment = a }
}

// WithDefault sets the leaf's defaultValue. Must match valueType
// (invariant S2); AddLeaf converts it via [hash.Convert] to enforce this.
func WithDefault(v any) LeafOption {
	return func(s *leafSpec) { s.defaultValue, s.hasDefault = v, true }
}

// WithOptions declares the sequence of allowed values. Values are stored
// in their comma-joined string form (the same rendering [hash.Convert]
// uses for scalar-to-string), so membership is always checked against the
// string form of a candidate value regardless of valueType.
func WithOptions(vals ...any) LeafOption {
	return func(s *leafSpec) { s.options = vals }
}

// WithBounds sets the inclusive numeric bounds.
func WithBounds(minInc, maxInc any) LeafOption {
	return func(s *leafSpec) { s.minInc, s.maxInc = minInc, maxInc }
}

// WithExclusiveBounds sets the exclusive numeric bounds.
func WithExclusiveBounds(minExc, maxExc any) LeafOption {
	return func(s *leafSpec) { s.minExc, s.maxExc = minExc, maxExc }
}

// WithSize sets sequence-length (or table row-count) bounds.
func WithSize(minSize, maxSize int) LeafOption {
	return func(s *leafSpec) { s.minSize, s.maxSize = &minSize, &maxSize }
}

// WithAllowedStates restricts the states in which a write is accepted.
func WithAllowedStates(states ...State) LeafOption {
	return func(s *leafSpec) { s.allowedStates = states }
}

// WithRequiredAccessLevel sets the minimum client privilege needed to
// write the leaf.
func WithRequiredAccessLevel(l AccessLevel) LeafOption {
	return func(s *leafSpec) { s.accessLevel = &l }
}

// WithTags attaches free-form classification tags, consumed by
// [Schema.SubSchema]'s tag filter.
func WithTags(tags ...string) LeafOption {
	return func(s *leafSpec) { s.tags = tags }
}

// WithAlias attaches an arbitrary alias value, maintained in the schema's
// reverse index.
func WithAlias(v any) LeafOption {
	return func(s *leafSpec) { s.alias, s.hasAlias = v, true }
}

// WithClassID marks the leaf (or node, via [Schema.AddNode]) as
// representing an instance of a registered class.
func WithClassID(id string) LeafOption {
	return func(s *leafSpec) { s.classID = id }
}

// WithDisplayType sets a UI/plumbing hint.
func WithDisplayType(d DisplayType) LeafOption {
	return func(s *leafSpec) { s.displayType = d }
}

// WithRowSchema marks the leaf as a table whose rows validate against row.
// row's own leaves must be non-table (invariant S3); AddLeaf rejects a
// row schema that nests another table.
func WithRowSchema(row *Schema) LeafOption {
	return func(s *leafSpec) { s.rowSchema = row }
}

// WithArchivePolicy sets the logger sampling policy.
func WithArchivePolicy(p ArchivePolicy) LeafOption {
	return func(s *leafSpec) { s.archivePolicy = p }
}

// WithDAQ sets downstream data-acquisition hints.
func WithDAQ(dataType, policy string) LeafOption {
	return func(s *leafSpec) { s.daqDataType, s.daqPolicy = dataType, policy }
}

// WithAllowedActions declares opaque capability tokens accepted on the leaf.
func WithAllowedActions(actions ...string) LeafOption {
	return func(s *leafSpec) { s.allowedActions = actions }
}

// WithUnit attaches a unit and metric-prefix annotation.
func WithUnit(unitEnum, metricPrefixEnum string) LeafOption {
	return func(s *leafSpec) { s.unitEnum, s.metricPrefix = unitEnum, metricPrefixEnum }
}

// WithAliasing marks the leaf so that a none value is left for downstream
// resolution rather than rejected outright (spec §4.1.1, §4.3.2).
func WithAliasing() LeafOption {
	return func(s *leafSpec) { s.isAliasing = true }
}

// AddLeaf declares path as a leaf, applying every option in order, and
// sets nodeType=node on every ancestor along path.
func (s *Schema) AddLeaf(path string, opts ...LeafOption) error {
	spec := &leafSpec{accessMode: AccessInit | AccessRead | AccessWrite, leafType: LeafProperty}
	for _, opt := range opts {
		opt(spec)
	}

	if spec.valueType == nil {
		return fmt.Errorf("%w: %q declared without a valueType", ErrInvalidLeaf, path)
	}

	if spec.rowSchema != nil {
		for _, rp := range spec.rowSchema.GetDeepPaths() {
			if spec.rowSchema.IsLeaf(rp) {
				if _, err := spec.rowSchema.attr(rp, AttrRowSchema); err == nil {
					return fmt.Errorf("%w: row schema of %q nests another table at %q", ErrInvalidLeaf, path, rp)
				}
			}
		}
	}

	if err := s.ensureAncestors(path); err != nil {
		return err
	}

	if err := s.tree.Set(path, hash.None()); err != nil {
		return err
	}

	set := func(key string, v any) error {
		if v == nil {
			return nil
		}

		return s.tree.SetAttribute(path, key, v)
	}

	token, err := literal.TokenOf(*spec.valueType)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidLeaf, path, err)
	}

	if err := set(AttrNodeType, string(NodeTypeLeaf)); err != nil {
		return err
	}

	if err := set(AttrLeafType, string(spec.leafType)); err != nil {
		return err
	}

	if err := set(AttrValueType, token); err != nil {
		return err
	}

	if err := set(AttrAccessMode, int32(spec.accessMode)); err != nil {
		return err
	}

	assignment := spec.assignment
	if assignment == "" {
		assignment = AssignmentOptional
	}

	if err := set(AttrAssignment, string(assignment)); err != nil {
		return err
	}

	if spec.hasDefault {
		dv, err := hash.Convert(mustWrap(spec.defaultValue), *spec.valueType)
		if err != nil {
			return fmt.Errorf("%w: %q defaultValue: %w", ErrInvalidLeaf, path, err)
		}

		if err := s.tree.SetAttribute(path, AttrDefaultValue, dv); err != nil {
			return err
		}
	}

	if len(spec.options) > 0 {
		if err := s.tree.SetAttribute(path, AttrOptions, toStringSlice(spec.options)); err != nil {
			return err
		}
	}

	if err := set(AttrMinInc, spec.minInc); err != nil {
		return err
	}

	if err := set(AttrMaxInc, spec.maxInc); err != nil {
		return err
	}

	if err := set(AttrMinExc, spec.minExc); err != nil {
		return err
	}

	if err := set(AttrMaxExc, spec.maxExc); err != nil {
		return err
	}

	if spec.minSize != nil {
		if err := set(AttrMinSize, int32(*spec.minSize)); err != nil {
			return err
		}
	}

	if spec.maxSize != nil {
		if err := set(AttrMaxSize, int32(*spec.maxSize)); err != nil {
			return err
		}
	}

	if len(spec.allowedStates) > 0 {
		states := make([]string, len(spec.allowedStates))
		for i, st := range spec.allowedStates {
			states[i] = string(st)
		}

		if err := set(AttrAllowedStates, states); err != nil {
			return err
		}
	}

	if spec.accessLevel != nil {
		if err := set(AttrRequiredAccessLevel, int32(*spec.accessLevel)); err != nil {
			return err
		}
	}

	if len(spec.tags) > 0 {
		if err := set(AttrTags, spec.tags); err != nil {
			return err
		}
	}

	if spec.hasAlias {
		v := mustWrap(spec.alias)
		if err := s.tree.SetAttribute(path, AttrAlias, v); err != nil {
			return err
		}

		s.setAlias(path, v)
	}

	if spec.classID != "" {
		if err := set(AttrClassID, spec.classID); err != nil {
			return err
		}
	}

	if spec.displayType != "" {
		if err := set(AttrDisplayType, string(spec.displayType)); err != nil {
			return err
		}
	}

	if spec.rowSchema != nil {
		if err := s.tree.SetAttribute(path, AttrRowSchema, hash.NewSchema(spec.rowSchema)); err != nil {
			return err
		}
	}

	if spec.archivePolicy != "" {
		if err := set(AttrArchivePolicy, string(spec.archivePolicy)); err != nil {
			return err
		}
	}

	if spec.daqDataType != "" {
		if err := set(AttrDAQDataType, spec.daqDataType); err != nil {
			return err
		}
	}

	if spec.daqPolicy != "" {
		if err := set(AttrDAQPolicy, spec.daqPolicy); err != nil {
			return err
		}
	}

	if len(spec.allowedActions) > 0 {
		if err := set(AttrAllowedActions, spec.allowedActions); err != nil {
			return err
		}
	}

	if spec.unitEnum != "" {
		if err := set(AttrUnitEnum, spec.unitEnum); err != nil {
			return err
		}
	}

	if spec.metricPrefix != "" {
		if err := set(AttrMetricPrefixEnum, spec.metricPrefix); err != nil {
			return err
		}
	}

	if spec.isAliasing {
		if err := set(AttrIsAliasing, true); err != nil {
			return err
		}
	}

	return nil
}

// NodeOption configures an intermediate node declared through
// [Schema.AddNode].
type NodeOption func(*leafSpec)

// WithNodeClassID marks the node as representing an instance of a
// registered class.
func WithNodeClassID(id string) NodeOption { return func(s *leafSpec) { s.classID = id } }

// WithNodeDisplayType sets a UI/plumbing hint on the node.
func WithNodeDisplayType(d DisplayType) NodeOption { return func(s *leafSpec) { s.displayType = d } }

// WithNodeTags attaches classification tags to the node.
func WithNodeTags(tags ...string) NodeOption { return func(s *leafSpec) { s.tags = tags } }

// AddNode declares path as an intermediate node, distinct from a leaf.
func (s *Schema) AddNode(path string, opts ...NodeOption) error {
	spec := &leafSpec{}
	for _, opt := range opts {
		opt(spec)
	}

	if err := s.ensureAncestors(path); err != nil {
		return err
	}

	if !s.tree.Has(path) {
		if err := s.tree.Set(path, hash.New()); err != nil {
			return err
		}
	}

	if err := s.tree.SetAttribute(path, AttrNodeType, string(NodeTypeNode)); err != nil {
		return err
	}

	if spec.classID != "" {
		if err := s.tree.SetAttribute(path, AttrClassID, spec.classID); err != nil {
			return err
		}
	}

	if spec.displayType != "" {
		if err := s.tree.SetAttribute(path, AttrDisplayType, string(spec.displayType)); err != nil {
			return err
		}
	}

	if len(spec.tags) > 0 {
		if err := s.tree.SetAttribute(path, AttrTags, spec.tags); err != nil {
			return err
		}
	}

	return nil
}

func mustWrap(v any) hash.Value {
	// Values passed through LeafOptions are always one of hash.NewValue's
	// supported native Go types; a conversion failure here is a caller
	// programming error, not recoverable input.
	val, err := hash.NewValue(v)
	if err != nil {
		panic(err)
	}

	return val
}

func toStringSlice(vals []any) []string {
	out := make([]string, len(vals))

	for i, v := range vals {
		wv := mustWrap(v)

		conv, err := hash.Convert(wv, hash.TagString)
		if err != nil {
			out[i] = fmt.Sprint(v)
			continue
		}

		out[i], _ = conv.AsString()
	}

	return out
}
