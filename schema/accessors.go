package schema

import "go.karabo.dev/control/hash"

// AccessMode returns the leaf's access mode mask.
func (s *Schema) AccessMode(path string) (AccessMode, error) {
	v, err := s.attr(path, AttrAccessMode)
	if err != nil {
		return 0, err
	}

	n, _ := v.AsInt32()

	return AccessMode(n), nil
}

// LeafType returns the leaf's declared leafType, or "" if absent or not a
// leaf.
func (s *Schema) LeafType(path string) LeafType {
	v, ok := s.attrOrZero(path, AttrLeafType)
	if !ok {
		return ""
	}

	str, _ := v.AsString()

	return LeafType(str)
}

// Assignment returns the leaf's assignment.
func (s *Schema) Assignment(path string) (Assignment, error) {
	v, err := s.attr(path, AttrAssignment)
	if err != nil {
		return "", err
	}

	str, _ := v.AsString()

	return Assignment(str), nil
}

// DefaultValue returns the leaf's defaultValue, if declared.
func (s *Schema) DefaultValue(path string) (hash.Value, bool) {
	return s.attrOrZero(path, AttrDefaultValue)
}

// Options returns the leaf's declared allowed values, in their
// comma-joined string form (see [WithOptions]).
func (s *Schema) Options(path string) ([]string, bool) {
	v, ok := s.attrOrZero(path, AttrOptions)
	if !ok {
		return nil, false
	}

	seq, _ := v.Seq().([]string)

	return seq, true
}

// Bounds returns the leaf's inclusive and exclusive numeric bounds.
// Absent bounds are reported via the ok return of each pair.
func (s *Schema) Bounds(path string) (minInc, maxInc, minExc, maxExc hash.Value, hasInc, hasExc bool) {
	minInc, okMinInc := s.attrOrZero(path, AttrMinInc)
	maxInc, okMaxInc := s.attrOrZero(path, AttrMaxInc)
	minExc, okMinExc := s.attrOrZero(path, AttrMinExc)
	maxExc, okMaxExc := s.attrOrZero(path, AttrMaxExc)

	return minInc, maxInc, minExc, maxExc, okMinInc || okMaxInc, okMinExc || okMaxExc
}

// SizeBounds returns the leaf's sequence-length (or table row-count)
// bounds.
func (s *Schema) SizeBounds(path string) (minSize, maxSize int, ok bool) {
	minV, okMin := s.attrOrZero(path, AttrMinSize)
	maxV, okMax := s.attrOrZero(path, AttrMaxSize)

	if okMin {
		n, _ := minV.AsInt32()
		minSize = int(n)
	}

	if okMax {
		n, _ := maxV.AsInt32()
		maxSize = int(n)
	} else {
		maxSize = -1
	}

	return minSize, maxSize, okMin || okMax
}

// AllowedStates returns the states in which a write is accepted.
func (s *Schema) AllowedStates(path string) ([]State, bool) {
	v, ok := s.attrOrZero(path, AttrAllowedStates)
	if !ok {
		return nil, false
	}

	raw, _ := v.Seq().([]string)
	out := make([]State, len(raw))

	for i, r := range raw {
		out[i] = State(r)
	}

	return out, true
}

// RequiredAccessLevel returns the leaf's minimum write privilege.
func (s *Schema) RequiredAccessLevel(path string) (AccessLevel, bool) {
	v, ok := s.attrOrZero(path, AttrRequiredAccessLevel)
	if !ok {
		return AccessLevelObserver, false
	}

	n, _ := v.AsInt32()

	return AccessLevel(n), true
}

// Tags returns the leaf or node's classification tags.
func (s *Schema) Tags(path string) ([]string, bool) {
	v, ok := s.attrOrZero(path, AttrTags)
	if !ok {
		return nil, false
	}

	seq, _ := v.Seq().([]string)

	return seq, true
}

// ClassID returns the classId attribute of a node or leaf.
func (s *Schema) ClassID(path string) (string, bool) {
	v, ok := s.attrOrZero(path, AttrClassID)
	if !ok {
		return "", false
	}

	str, _ := v.AsString()

	return str, true
}

// DisplayType returns the node or leaf's display-type hint.
func (s *Schema) DisplayType(path string) DisplayType {
	v, ok := s.attrOrZero(path, AttrDisplayType)
	if !ok {
		return DisplayTypeNone
	}

	str, _ := v.AsString()

	return DisplayType(str)
}

// RowSchema returns the row schema of a table leaf.
func (s *Schema) RowSchema(path string) (*Schema, error) {
	v, err := s.attr(path, AttrRowSchema)
	if err != nil {
		return nil, ErrNotTable
	}

	raw, ok := v.AsSchema()
	if !ok {
		return nil, ErrNotTable
	}

	row, ok := raw.(*Schema)
	if !ok {
		return nil, ErrNotTable
	}

	return row, nil
}

// IsTable reports whether path is a leaf with a declared row schema.
func (s *Schema) IsTable(path string) bool {
	_, err := s.RowSchema(path)
	return err == nil
}

// ArchivePolicy returns the leaf's logger sampling policy.
func (s *Schema) ArchivePolicy(path string) (ArchivePolicy, bool) {
	v, ok := s.attrOrZero(path, AttrArchivePolicy)
	if !ok {
		return "", false
	}

	str, _ := v.AsString()

	return ArchivePolicy(str), true
}

// DAQ returns the leaf's daqDataType / daqPolicy hints.
func (s *Schema) DAQ(path string) (dataType, policy string) {
	if v, ok := s.attrOrZero(path, AttrDAQDataType); ok {
		dataType, _ = v.AsString()
	}

	if v, ok := s.attrOrZero(path, AttrDAQPolicy); ok {
		policy, _ = v.AsString()
	}

	return dataType, policy
}

// AllowedActions returns the leaf's accepted opaque capability tokens.
func (s *Schema) AllowedActions(path string) ([]string, bool) {
	v, ok := s.attrOrZero(path, AttrAllowedActions)
	if !ok {
		return nil, false
	}

	seq, _ := v.Seq().([]string)

	return seq, true
}

// Unit returns the leaf's unit and metric-prefix annotation.
func (s *Schema) Unit(path string) (unitEnum, metricPrefixEnum string) {
	if v, ok := s.attrOrZero(path, AttrUnitEnum); ok {
		unitEnum, _ = v.AsString()
	}

	if v, ok := s.attrOrZero(path, AttrMetricPrefixEnum); ok {
		metricPrefixEnum, _ = v.AsString()
	}

	return unitEnum, metricPrefixEnum
}

// IsAliasing reports whether a none value at path should be left for
// downstream resolution instead of type-checked (spec §4.1.1).
func (s *Schema) IsAliasing(path string) bool {
	v, ok := s.attrOrZero(path, AttrIsAliasing)
	if !ok {
		return false
	}

	b, _ := v.AsBool()

	return b
}
