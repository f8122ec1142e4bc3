package schema

import (
	"github.com/google/jsonschema-go/jsonschema"

	"go.karabo.dev/control/hash"
)

// ToJSONSchema projects s onto a [jsonschema.Schema] document, the same
// carrier magicschema's generator produces from an annotated YAML tree.
// It exists for tooling that wants a portable description of a device's
// configuration shape (doc generators, IDE schema validation) and does not
// attempt to round-trip: the Karabo-specific vocabulary (accessMode,
// allowedStates, classId, and the rest of §3.4's table) that JSON Schema
// has no slot for is simply not carried across.
func (s *Schema) ToJSONSchema() *jsonschema.Schema {
	return s.nodeToJSONSchema("")
}

func (s *Schema) nodeToJSONSchema(path string) *jsonschema.Schema {
	out := &jsonschema.Schema{}

	keys := s.GetKeys(path)
	if len(keys) == 0 {
		return out
	}

	out.Type = "object"
	out.Properties = make(map[string]*jsonschema.Schema, len(keys))

	var required []string

	for _, k := range keys {
		childPath := k
		if path != "" {
			childPath = path + string(s.tree.Separator()) + k
		}

		var child *jsonschema.Schema

		if s.IsLeaf(childPath) {
			child = s.leafToJSONSchema(childPath)

			if a, err := s.Assignment(childPath); err == nil && a == AssignmentMandatory {
				required = append(required, k)
			}
		} else {
			child = s.nodeToJSONSchema(childPath)
		}

		out.Properties[k] = child
	}

	if len(required) > 0 {
		out.Required = required
	}

	return out
}

func (s *Schema) leafToJSONSchema(path string) *jsonschema.Schema {
	out := &jsonschema.Schema{}

	vt, err := s.GetValueType(path)
	if err != nil {
		return out
	}

	switch {
	case vt == hash.TagBool:
		out.Type = "boolean"
	case vt == hash.TagString:
		out.Type = "string"
	case vt.IsNumeric() && isIntegerTag(vt):
		out.Type = "integer"
	case vt.IsNumeric():
		out.Type = "number"
	case vt.IsVector():
		out.Type = "array"

		if minSize, maxSize, ok := s.SizeBounds(path); ok {
			if minSize > 0 {
				n := minSize
				out.MinItems = &n
			}

			if maxSize >= 0 {
				n := maxSize
				out.MaxItems = &n
			}
		}
	default:
		out.Type = "object"
	}

	if dv, ok := s.DefaultValue(path); ok {
		out.Default = dv.Raw()
	}

	if opts, ok := s.Options(path); ok {
		enum := make([]any, len(opts))
		for i, o := range opts {
			enum[i] = o
		}

		out.Enum = enum
	}

	minInc, maxInc, minExc, maxExc, hasInc, hasExc := s.Bounds(path)

	if hasInc {
		if f, ok := toFloat(minInc); ok {
			out.Minimum = &f
		}

		if f, ok := toFloat(maxInc); ok {
			out.Maximum = &f
		}
	}

	if hasExc {
		if f, ok := toFloat(minExc); ok {
			out.ExclusiveMinimum = &f
		}

		if f, ok := toFloat(maxExc); ok {
			out.ExclusiveMaximum = &f
		}
	}

	if am, err := s.AccessMode(path); err == nil && !am.Has(AccessWrite) {
		out.ReadOnly = true
	}

	return out
}

func isIntegerTag(t hash.Tag) bool {
	switch t {
	case hash.TagInt8, hash.TagUint8, hash.TagInt16, hash.TagUint16,
		hash.TagInt32, hash.TagUint32, hash.TagInt64, hash.TagUint64:
		return true
	default:
		return false
	}
}

func toFloat(v hash.Value) (float64, bool) {
	conv, err := hash.Convert(v, hash.TagFloat64)
	if err != nil {
		return 0, false
	}

	return conv.AsFloat64()
}
