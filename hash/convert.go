package hash

import (
	"fmt"
	"strconv"
	"strings"
)

// GetAs returns the value at path converted to target, using [Convert].
func (h *Hash) GetAs(path string, target Tag) (Value, error) {
	v, err := h.Get(path)
	if err != nil {
		return Value{}, err
	}

	return Convert(v, target)
}

// Convert implements the conversion matrix of spec §4.1.1: a total
// function from (source tag, target tag) to a parser/caster. Arithmetic
// conversions wrap on integer narrowing and truncate on float narrowing.
// String conversion uses the canonical textual form of the target
// variant. A non-empty string converting to a sequence splits on ',' with
// interior whitespace trimmed; an empty string converts to an empty
// sequence. A sequence converting to a string is comma-joined. Converting
// to or from TagNone always fails: the validator handles a none value on
// a leaf marked isAliasing (see schema.Schema.IsAliasing).
func Convert(v Value, target Tag) (Value, error) {
	if v.Tag() == target {
		return v, nil
	}

	if target == TagNone || v.Tag() == TagNone {
		return Value{}, fmt.Errorf("%w: cannot convert %s to %s", ErrCastFailed, v.Tag(), target)
	}

	switch {
	case v.Tag() == TagString && target.IsVector():
		s, _ := v.AsString()
		return stringToSeq(s, target)
	case v.Tag().IsVector() && target == TagString:
		return seqToString(v)
	case target.IsComposite() || v.Tag().IsComposite() || target == TagSchema || v.Tag() == TagSchema:
		return Value{}, fmt.Errorf("%w: cannot convert %s to %s", ErrCastFailed, v.Tag(), target)
	case target == TagString:
		s, err := scalarToString(v)
		if err != nil {
			return Value{}, err
		}

		return NewString(s), nil
	case v.Tag() == TagString:
		s, _ := v.AsString()
		return stringToScalar(s, target)
	case target.IsNumeric() || target == TagBool:
		return scalarToScalar(v, target)
	case target == TagComplex64 || target == TagComplex128:
		return scalarToComplex(v, target)
	default:
		return Value{}, fmt.Errorf("%w: unsupported conversion %s to %s", ErrCastFailed, v.Tag(), target)
	}
}

func scalarToFloat64(v Value) (float64, bool) {
	switch v.Tag() {
	case TagInt8:
		n, _ := v.AsInt8()
		return float64(n), true
	case TagUint8:
		n, _ := v.AsUint8()
		return float64(n), true
	case TagInt16:
		n, _ := v.AsInt16()
		return float64(n), true
	case TagUint16:
		n, _ := v.AsUint16()
		return float64(n), true
	case TagInt32:
		n, _ := v.AsInt32()
		return float64(n), true
	case TagUint32:
		n, _ := v.AsUint32()
		return float64(n), true
	case TagInt64:
		n, _ := v.AsInt64()
		return float64(n), true
	case TagUint64:
		n, _ := v.AsUint64()
		return float64(n), true
	case TagFloat32:
		n, _ := v.AsFloat32()
		return float64(n), true
	case TagFloat64:
		n, _ := v.AsFloat64()
		return n, true
	case TagBool:
		b, _ := v.AsBool()
		if b {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

func scalarToScalar(v Value, target Tag) (Value, error) {
	f, ok := scalarToFloat64(v)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s is not numeric", ErrCastFailed, v.Tag())
	}

	switch target {
	case TagBool:
		return NewBool(f != 0), nil
	case TagInt8:
		return NewInt8(int8(int64(f))), nil
	case TagUint8:
		return NewUint8(uint8(int64(f))), nil
	case TagInt16:
		return NewInt16(int16(int64(f))), nil
	case TagUint16:
		return NewUint16(uint16(int64(f))), nil
	case TagInt32:
		return NewInt32(int32(int64(f))), nil
	case TagUint32:
		return NewUint32(uint32(int64(f))), nil
	case TagInt64:
		return NewInt64(int64(f)), nil
	case TagUint64:
		return NewUint64(uint64(int64(f))), nil
	case TagFloat32:
		return NewFloat32(float32(f)), nil
	case TagFloat64:
		return NewFloat64(f), nil
	default:
		return Value{}, fmt.Errorf("%w: %s is not a scalar numeric target", ErrCastFailed, target)
	}
}

func scalarToComplex(v Value, target Tag) (Value, error) {
	switch v.Tag() {
	case TagComplex64:
		c, _ := v.AsComplex64()
		if target == TagComplex128 {
			return NewComplex128(complex128(c)), nil
		}

		return NewComplex64(c), nil
	case TagComplex128:
		c, _ := v.AsComplex128()
		if target == TagComplex64 {
			return NewComplex64(complex64(c)), nil
		}

		return NewComplex128(c), nil
	default:
		f, ok := scalarToFloat64(v)
		if !ok {
			return Value{}, fmt.Errorf("%w: cannot convert %s to %s", ErrCastFailed, v.Tag(), target)
		}

		if target == TagComplex64 {
			return NewComplex64(complex(float32(f), 0)), nil
		}

		return NewComplex128(complex(f, 0)), nil
	}
}

func scalarToString(v Value) (string, error) {
	switch v.Tag() {
	case TagBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case TagInt8:
		n, _ := v.AsInt8()
		return strconv.FormatInt(int64(n), 10), nil
	case TagUint8:
		n, _ := v.AsUint8()
		return strconv.FormatUint(uint64(n), 10), nil
	case TagInt16:
		n, _ := v.AsInt16()
		return strconv.FormatInt(int64(n), 10), nil
	case TagUint16:
		n, _ := v.AsUint16()
		return strconv.FormatUint(uint64(n), 10), nil
	case TagInt32:
		n, _ := v.AsInt32()
		return strconv.FormatInt(int64(n), 10), nil
	case TagUint32:
		n, _ := v.AsUint32()
		return strconv.FormatUint(uint64(n), 10), nil
	case TagInt64:
		n, _ := v.AsInt64()
		return strconv.FormatInt(n, 10), nil
	case TagUint64:
		n, _ := v.AsUint64()
		return strconv.FormatUint(n, 10), nil
	case TagFloat32:
		n, _ := v.AsFloat32()
		return strconv.FormatFloat(float64(n), 'g', -1, 32), nil
	case TagFloat64:
		n, _ := v.AsFloat64()
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	case TagComplex64:
		c, _ := v.AsComplex64()
		return strconv.FormatComplex(complex128(c), 'g', -1, 64), nil
	case TagComplex128:
		c, _ := v.AsComplex128()
		return strconv.FormatComplex(c, 'g', -1, 128), nil
	case TagBytes:
		b, _ := v.AsBytes()
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: cannot render %s as string", ErrCastFailed, v.Tag())
	}
}

func stringToScalar(s string, target Tag) (Value, error) {
	switch target {
	case TagBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as bool: %w", ErrCastFailed, s, err)
		}

		return NewBool(b), nil
	case TagInt8, TagInt16, TagInt32, TagInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as %s: %w", ErrCastFailed, s, target, err)
		}

		return scalarToScalar(NewInt64(n), target)
	case TagUint8, TagUint16, TagUint32, TagUint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as %s: %w", ErrCastFailed, s, target, err)
		}

		return scalarToScalar(NewUint64(n), target)
	case TagFloat32, TagFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as %s: %w", ErrCastFailed, s, target, err)
		}

		return scalarToScalar(NewFloat64(f), target)
	case TagComplex64, TagComplex128:
		c, err := strconv.ParseComplex(s, 128)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q as %s: %w", ErrCastFailed, s, target, err)
		}

		return scalarToComplex(NewComplex128(c), target)
	case TagBytes:
		return NewBytes([]byte(s)), nil
	default:
		return Value{}, fmt.Errorf("%w: cannot parse %q as %s", ErrCastFailed, s, target)
	}
}

func stringToSeq(s string, target Tag) (Value, error) {
	var elems []string

	if s != "" {
		for _, part := range strings.Split(s, ",") {
			elems = append(elems, strings.TrimSpace(part))
		}
	}

	scalarTag, err := scalarTagOf(target)
	if err != nil {
		return Value{}, err
	}

	if scalarTag == TagString {
		return NewVectorString(elems), nil
	}

	switch target {
	case TagVectorBool:
		out := make([]bool, len(elems))

		for i, e := range elems {
			v, err := stringToScalar(e, TagBool)
			if err != nil {
				return Value{}, err
			}

			out[i], _ = v.AsBool()
		}

		return NewVectorBool(out), nil
	case TagVectorInt32:
		out := make([]int32, len(elems))

		for i, e := range elems {
			v, err := stringToScalar(e, TagInt32)
			if err != nil {
				return Value{}, err
			}

			out[i], _ = v.AsInt32()
		}

		return NewVectorInt32(out), nil
	case TagVectorInt64:
		out := make([]int64, len(elems))

		for i, e := range elems {
			v, err := stringToScalar(e, TagInt64)
			if err != nil {
				return Value{}, err
			}

			out[i], _ = v.AsInt64()
		}

		return NewVectorInt64(out), nil
	case TagVectorFloat64:
		out := make([]float64, len(elems))

		for i, e := range elems {
			v, err := stringToScalar(e, TagFloat64)
			if err != nil {
				return Value{}, err
			}

			out[i], _ = v.AsFloat64()
		}

		return NewVectorFloat64(out), nil
	default:
		return Value{}, fmt.Errorf("%w: string-to-sequence conversion not implemented for %s", ErrCastFailed, target)
	}
}

func seqToString(v Value) (Value, error) {
	seq := v.Seq()

	var parts []string

	switch s := seq.(type) {
	case []bool:
		for _, e := range s {
			parts = append(parts, strconv.FormatBool(e))
		}
	case []int8:
		for _, e := range s {
			parts = append(parts, strconv.FormatInt(int64(e), 10))
		}
	case []int16:
		for _, e := range s {
			parts = append(parts, strconv.FormatInt(int64(e), 10))
		}
	case []int32:
		for _, e := range s {
			parts = append(parts, strconv.FormatInt(int64(e), 10))
		}
	case []int64:
		for _, e := range s {
			parts = append(parts, strconv.FormatInt(e, 10))
		}
	case []uint16:
		for _, e := range s {
			parts = append(parts, strconv.FormatUint(uint64(e), 10))
		}
	case []uint32:
		for _, e := range s {
			parts = append(parts, strconv.FormatUint(uint64(e), 10))
		}
	case []uint64:
		for _, e := range s {
			parts = append(parts, strconv.FormatUint(e, 10))
		}
	case []float32:
		for _, e := range s {
			parts = append(parts, strconv.FormatFloat(float64(e), 'g', -1, 32))
		}
	case []float64:
		for _, e := range s {
			parts = append(parts, strconv.FormatFloat(e, 'g', -1, 64))
		}
	case []string:
		parts = s
	default:
		return Value{}, fmt.Errorf("%w: cannot render %s as string", ErrCastFailed, v.Tag())
	}

	return NewString(strings.Join(parts, ",")), nil
}

// scalarTagOf returns the scalar element tag for a vector tag.
func scalarTagOf(vecTag Tag) (Tag, error) {
	switch vecTag {
	case TagVectorBool:
		return TagBool, nil
	case TagVectorInt8:
		return TagInt8, nil
	case TagVectorUint8:
		return TagUint8, nil
	case TagVectorInt16:
		return TagInt16, nil
	case TagVectorUint16:
		return TagUint16, nil
	case TagVectorInt32:
		return TagInt32, nil
	case TagVectorUint32:
		return TagUint32, nil
	case TagVectorInt64:
		return TagInt64, nil
	case TagVectorUint64:
		return TagUint64, nil
	case TagVectorFloat32:
		return TagFloat32, nil
	case TagVectorFloat64:
		return TagFloat64, nil
	case TagVectorComplex64:
		return TagComplex64, nil
	case TagVectorComplex128:
		return TagComplex128, nil
	case TagVectorString:
		return TagString, nil
	default:
		return TagNone, fmt.Errorf("%w: %s is not a sequence tag", ErrTypeMismatch, vecTag)
	}
}
