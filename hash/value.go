package hash

// Value is a closed sum type over every variant a node may hold (spec
// §3.3). Exactly one field is meaningful, selected by tag; the rest are
// zero. Value is comparable only via [Hash.Similar] / [Hash.FullyEqual],
// never with ==, since composite variants hold pointers.
type Value struct {
	tag Tag

	b bool

	i8  int8
	u8  uint8
	i16 int16
	u16 uint16
	i32 int32
	u32 uint32
	i64 int64
	u64 uint64

	f32 float32
	f64 float64

	c64  complex64
	c128 complex128

	str   string
	bytes []byte

	// seq holds the backing slice for any TagVector* tag, typed as one of
	// []bool, []int8, ..., []string.
	seq any

	h     *Hash
	hSeq  []*Hash
	sh    *SharedHash
	shSeq []*SharedHash

	// schemaVal holds a *schema.Schema. It is stored as any rather than a
	// concrete type to avoid hash importing schema, which itself builds
	// its tree on top of Hash.
	schemaVal any
}

// Tag reports the variant held by v.
func (v Value) Tag() Tag { return v.tag }

// IsNone reports whether v holds the none variant.
func (v Value) IsNone() bool { return v.tag == TagNone }

// None returns the none value.
func None() Value { return Value{tag: TagNone} }

func NewBool(b bool) Value       { return Value{tag: TagBool, b: b} }
func NewInt8(n int8) Value       { return Value{tag: TagInt8, i8: n} }
func NewUint8(n uint8) Value     { return Value{tag: TagUint8, u8: n} }
func NewInt16(n int16) Value     { return Value{tag: TagInt16, i16: n} }
func NewUint16(n uint16) Value   { return Value{tag: TagUint16, u16: n} }
func NewInt32(n int32) Value     { return Value{tag: TagInt32, i32: n} }
func NewUint32(n uint32) Value   { return Value{tag: TagUint32, u32: n} }
func NewInt64(n int64) Value     { return Value{tag: TagInt64, i64: n} }
func NewUint64(n uint64) Value   { return Value{tag: TagUint64, u64: n} }
func NewFloat32(f float32) Value { return Value{tag: TagFloat32, f32: f} }
func NewFloat64(f float64) Value { return Value{tag: TagFloat64, f64: f} }

func NewComplex64(c complex64) Value   { return Value{tag: TagComplex64, c64: c} }
func NewComplex128(c complex128) Value { return Value{tag: TagComplex128, c128: c} }

func NewString(s string) Value { return Value{tag: TagString, str: s} }
func NewBytes(b []byte) Value  { return Value{tag: TagBytes, bytes: b} }

func NewVectorBool(v []bool) Value             { return Value{tag: TagVectorBool, seq: v} }
func NewVectorInt8(v []int8) Value             { return Value{tag: TagVectorInt8, seq: v} }
func NewVectorUint8(v []uint8) Value           { return Value{tag: TagVectorUint8, seq: v} }
func NewVectorInt16(v []int16) Value           { return Value{tag: TagVectorInt16, seq: v} }
func NewVectorUint16(v []uint16) Value         { return Value{tag: TagVectorUint16, seq: v} }
func NewVectorInt32(v []int32) Value           { return Value{tag: TagVectorInt32, seq: v} }
func NewVectorUint32(v []uint32) Value         { return Value{tag: TagVectorUint32, seq: v} }
func NewVectorInt64(v []int64) Value           { return Value{tag: TagVectorInt64, seq: v} }
func NewVectorUint64(v []uint64) Value         { return Value{tag: TagVectorUint64, seq: v} }
func NewVectorFloat32(v []float32) Value       { return Value{tag: TagVectorFloat32, seq: v} }
func NewVectorFloat64(v []float64) Value       { return Value{tag: TagVectorFloat64, seq: v} }
func NewVectorComplex64(v []complex64) Value   { return Value{tag: TagVectorComplex64, seq: v} }
func NewVectorComplex128(v []complex128) Value { return Value{tag: TagVectorComplex128, seq: v} }
func NewVectorString(v []string) Value         { return Value{tag: TagVectorString, seq: v} }

// NewHash wraps h as an owned nested map value.
func NewHash(h *Hash) Value { return Value{tag: TagHash, h: h} }

// NewVectorHash wraps a sequence of owned nested maps.
func NewVectorHash(seq []*Hash) Value { return Value{tag: TagVectorHash, hSeq: seq} }

// NewSharedHash wraps a reference-shared nested map. Once published, the
// referent must not be mutated (see package doc).
func NewSharedHash(sh *SharedHash) Value { return Value{tag: TagSharedHash, sh: sh} }

// NewVectorSharedHash wraps a sequence of reference-shared nested maps.
func NewVectorSharedHash(seq []*SharedHash) Value {
	return Value{tag: TagVectorSharedHash, shSeq: seq}
}

// NewSchema wraps a schema value. s is typically a *schema.Schema; it is
// stored opaquely to avoid an import cycle.
func NewSchema(s any) Value { return Value{tag: TagSchema, schemaVal: s} }

// SharedHash is a reference-counted-by-convention nested map: once a
// SharedHash has been published (stored into a Value and handed to another
// owner), it must be treated as immutable. Use [Hash.DeepCopy] to obtain a
// mutable copy.
type SharedHash struct {
	H *Hash
}

func (v Value) AsBool() (bool, bool)       { return v.b, v.tag == TagBool }
func (v Value) AsInt8() (int8, bool)       { return v.i8, v.tag == TagInt8 }
func (v Value) AsUint8() (uint8, bool)     { return v.u8, v.tag == TagUint8 }
func (v Value) AsInt16() (int16, bool)     { return v.i16, v.tag == TagInt16 }
func (v Value) AsUint16() (uint16, bool)   { return v.u16, v.tag == TagUint16 }
func (v Value) AsInt32() (int32, bool)     { return v.i32, v.tag == TagInt32 }
func (v Value) AsUint32() (uint32, bool)   { return v.u32, v.tag == TagUint32 }
func (v Value) AsInt64() (int64, bool)     { return v.i64, v.tag == TagInt64 }
func (v Value) AsUint64() (uint64, bool)   { return v.u64, v.tag == TagUint64 }
func (v Value) AsFloat32() (float32, bool) { return v.f32, v.tag == TagFloat32 }
func (v Value) AsFloat64() (float64, bool) { return v.f64, v.tag == TagFloat64 }

func (v Value) AsComplex64() (complex64, bool)   { return v.c64, v.tag == TagComplex64 }
func (v Value) AsComplex128() (complex128, bool) { return v.c128, v.tag == TagComplex128 }

func (v Value) AsString() (string, bool) { return v.str, v.tag == TagString }
func (v Value) AsBytes() ([]byte, bool)  { return v.bytes, v.tag == TagBytes }

func (v Value) AsHash() (*Hash, bool)                 { return v.h, v.tag == TagHash }
func (v Value) AsVectorHash() ([]*Hash, bool)         { return v.hSeq, v.tag == TagVectorHash }
func (v Value) AsSharedHash() (*SharedHash, bool)     { return v.sh, v.tag == TagSharedHash }
func (v Value) AsVectorSharedHash() ([]*SharedHash, bool) {
	return v.shSeq, v.tag == TagVectorSharedHash
}

// AsSchema returns the opaque schema payload stored by [NewSchema]. Callers
// in package schema assert it back to *schema.Schema.
func (v Value) AsSchema() (any, bool) { return v.schemaVal, v.tag == TagSchema }

// Seq returns the backing slice for a vector tag as any, for callers that
// dispatch on v.Tag() themselves (e.g. conversion and wire codecs).
func (v Value) Seq() any { return v.seq }

// Raw returns the Go value underlying v regardless of tag: the scalar, the
// vector slice, the *Hash, the []*Hash, the *SharedHash, the
// []*SharedHash, or the opaque schema payload. It exists for generic
// callers (equality, wire encoding) that already switch on Tag().
func (v Value) Raw() any {
	switch v.tag {
	case TagNone:
		return nil
	case TagBool:
		return v.b
	case TagInt8:
		return v.i8
	case TagUint8:
		return v.u8
	case TagInt16:
		return v.i16
	case TagUint16:
		return v.u16
	case TagInt32:
		return v.i32
	case TagUint32:
		return v.u32
	case TagInt64:
		return v.i64
	case TagUint64:
		return v.u64
	case TagFloat32:
		return v.f32
	case TagFloat64:
		return v.f64
	case TagComplex64:
		return v.c64
	case TagComplex128:
		return v.c128
	case TagString:
		return v.str
	case TagBytes:
		return v.bytes
	case TagHash:
		return v.h
	case TagVectorHash:
		return v.hSeq
	case TagSharedHash:
		return v.sh
	case TagVectorSharedHash:
		return v.shSeq
	case TagSchema:
		return v.schemaVal
	default:
		return v.seq
	}
}
