package hash

// Tag discriminates the variant held by a [Value]. It is the sole runtime
// type discriminator for the attributed map: every addressable position
// carries exactly one Tag (spec invariant I1).
type Tag uint8

const (
	TagNone Tag = iota
	TagBool
	TagInt8
	TagUint8
	TagInt16
	TagUint16
	TagInt32
	TagUint32
	TagInt64
	TagUint64
	TagFloat32
	TagFloat64
	TagComplex64
	TagComplex128
	TagString
	TagBytes
	TagVectorBool
	TagVectorInt8
	TagVectorUint8
	TagVectorInt16
	TagVectorUint16
	TagVectorInt32
	TagVectorUint32
	TagVectorInt64
	TagVectorUint64
	TagVectorFloat32
	TagVectorFloat64
	TagVectorComplex64
	TagVectorComplex128
	TagVectorString
	TagHash
	TagVectorHash
	TagSharedHash
	TagVectorSharedHash
	TagSchema
)

// IsScalar reports whether the tag names a single scalar value (as opposed
// to a sequence or a composite).
func (t Tag) IsScalar() bool {
	switch t {
	case TagBool, TagInt8, TagUint8, TagInt16, TagUint16, TagInt32, TagUint32,
		TagInt64, TagUint64, TagFloat32, TagFloat64, TagComplex64, TagComplex128,
		TagString, TagBytes:
		return true
	default:
		return false
	}
}

// IsVector reports whether the tag names a sequence of scalars.
func (t Tag) IsVector() bool {
	switch t {
	case TagVectorBool, TagVectorInt8, TagVectorUint8, TagVectorInt16, TagVectorUint16,
		TagVectorInt32, TagVectorUint32, TagVectorInt64, TagVectorUint64,
		TagVectorFloat32, TagVectorFloat64, TagVectorComplex64, TagVectorComplex128,
		TagVectorString:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the tag names an integer or floating-point
// scalar, i.e. one that bounds checking and arithmetic conversion apply to.
func (t Tag) IsNumeric() bool {
	switch t {
	case TagInt8, TagUint8, TagInt16, TagUint16, TagInt32, TagUint32,
		TagInt64, TagUint64, TagFloat32, TagFloat64:
		return true
	default:
		return false
	}
}

// IsComposite reports whether the tag names a nested map, a sequence of
// nested maps, or a shared-reference variant of either.
func (t Tag) IsComposite() bool {
	switch t {
	case TagHash, TagVectorHash, TagSharedHash, TagVectorSharedHash:
		return true
	default:
		return false
	}
}

// String renders the tag as its exported Go identifier suffix. Package
// hash/literal maps tags to their on-wire short tokens instead.
func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}

	return "Unknown"
}

var tagNames = map[Tag]string{
	TagNone:             "None",
	TagBool:             "Bool",
	TagInt8:             "Int8",
	TagUint8:            "Uint8",
	TagInt16:            "Int16",
	TagUint16:           "Uint16",
	TagInt32:            "Int32",
	TagUint32:           "Uint32",
	TagInt64:            "Int64",
	TagUint64:           "Uint64",
	TagFloat32:          "Float32",
	TagFloat64:          "Float64",
	TagComplex64:        "Complex64",
	TagComplex128:       "Complex128",
	TagString:           "String",
	TagBytes:            "Bytes",
	TagVectorBool:       "VectorBool",
	TagVectorInt8:       "VectorInt8",
	TagVectorUint8:      "VectorUint8",
	TagVectorInt16:      "VectorInt16",
	TagVectorUint16:     "VectorUint16",
	TagVectorInt32:      "VectorInt32",
	TagVectorUint32:     "VectorUint32",
	TagVectorInt64:      "VectorInt64",
	TagVectorUint64:     "VectorUint64",
	TagVectorFloat32:    "VectorFloat32",
	TagVectorFloat64:    "VectorFloat64",
	TagVectorComplex64:  "VectorComplex64",
	TagVectorComplex128: "VectorComplex128",
	TagVectorString:     "VectorString",
	TagHash:             "Hash",
	TagVectorHash:       "VectorHash",
	TagSharedHash:       "SharedHash",
	TagVectorSharedHash: "VectorSharedHash",
	TagSchema:           "Schema",
}
