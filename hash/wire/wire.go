package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.karabo.dev/control/hash"
)

// Encoder serializes a Hash to its wire representation.
type Encoder interface {
	Encode(h *hash.Hash) ([]byte, error)
}

// Decoder parses a wire representation back into a Hash.
type Decoder interface {
	Decode(data []byte) (*hash.Hash, error)
}

var (
	// ErrUnsupportedTag indicates a value whose tag BinaryCodec does not
	// know how to place on the wire (currently: TagSchema).
	ErrUnsupportedTag = errors.New("unsupported tag for wire encoding")
	// ErrTruncated indicates the input ended before a complete value could
	// be decoded.
	ErrTruncated = errors.New("truncated wire data")
)

// BinaryCodec implements the insertion-order binary envelope format of
// spec §6: per node, a 2-byte key length and key bytes, a 4-byte tag, a
// 4-byte attribute count and each attribute encoded the same way, then the
// value. Sequences are prefixed with a 4-byte element count. The format
// carries no outer framing; callers add their own if needed (messaging
// transports generally already frame messages).
type BinaryCodec struct{}

// NewBinaryCodec returns a ready-to-use BinaryCodec.
func NewBinaryCodec() *BinaryCodec { return &BinaryCodec{} }

// Encode renders h as a self-contained byte slice.
func (BinaryCodec) Encode(h *hash.Hash) ([]byte, error) {
	var buf bytes.Buffer

	if err := encodeHash(&buf, h); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses data produced by Encode.
func (BinaryCodec) Decode(data []byte) (*hash.Hash, error) {
	r := bytes.NewReader(data)

	h, err := decodeHash(r)
	if err != nil {
		return nil, err
	}

	return h, nil
}

func encodeHash(buf *bytes.Buffer, h *hash.Hash) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(h.Len())); err != nil {
		return err
	}

	var encErr error

	h.Each(func(key string, v hash.Value, attrs hash.Attributes) {
		if encErr != nil {
			return
		}

		if err := writeKey(buf, key); err != nil {
			encErr = err

			return
		}

		if err := binary.Write(buf, binary.BigEndian, uint32(v.Tag())); err != nil {
			encErr = err

			return
		}

		if err := binary.Write(buf, binary.BigEndian, uint32(attrs.Len())); err != nil {
			encErr = err

			return
		}

		attrs.Each(func(akey string, av hash.Value) {
			if encErr != nil {
				return
			}

			if err := writeKey(buf, akey); err != nil {
				encErr = err

				return
			}

			if err := binary.Write(buf, binary.BigEndian, uint32(av.Tag())); err != nil {
				encErr = err

				return
			}

			if err := encodeValue(buf, av); err != nil {
				encErr = err
			}
		})

		if encErr != nil {
			return
		}

		encErr = encodeValue(buf, v)
	})

	return encErr
}

func writeKey(buf *bytes.Buffer, key string) error {
	if len(key) > 0xFFFF {
		return fmt.Errorf("%w: key %q exceeds 65535 bytes", ErrUnsupportedTag, key)
	}

	if err := binary.Write(buf, binary.BigEndian, uint16(len(key))); err != nil {
		return err
	}

	_, err := buf.WriteString(key)

	return err
}

func encodeValue(buf *bytes.Buffer, v hash.Value) error {
	switch v.Tag() {
	case hash.TagNone:
		return nil
	case hash.TagBool:
		b, _ := v.AsBool()
		var n uint8
		if b {
			n = 1
		}

		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagInt8:
		n, _ := v.AsInt8()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagUint8:
		n, _ := v.AsUint8()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagInt16:
		n, _ := v.AsInt16()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagUint16:
		n, _ := v.AsUint16()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagInt32:
		n, _ := v.AsInt32()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagUint32:
		n, _ := v.AsUint32()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagInt64:
		n, _ := v.AsInt64()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagUint64:
		n, _ := v.AsUint64()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagFloat32:
		n, _ := v.AsFloat32()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagFloat64:
		n, _ := v.AsFloat64()
		return binary.Write(buf, binary.BigEndian, n)
	case hash.TagComplex64:
		c, _ := v.AsComplex64()
		if err := binary.Write(buf, binary.BigEndian, real(c)); err != nil {
			return err
		}

		return binary.Write(buf, binary.BigEndian, imag(c))
	case hash.TagComplex128:
		c, _ := v.AsComplex128()
		if err := binary.Write(buf, binary.BigEndian, real(c)); err != nil {
			return err
		}

		return binary.Write(buf, binary.BigEndian, imag(c))
	case hash.TagString:
		s, _ := v.AsString()
		return writeBytes(buf, []byte(s))
	case hash.TagBytes:
		b, _ := v.AsBytes()
		return writeBytes(buf, b)
	case hash.TagHash:
		h, _ := v.AsHash()
		return encodeHash(buf, h)
	case hash.TagVectorHash:
		seq, _ := v.AsVectorHash()

		if err := binary.Write(buf, binary.BigEndian, uint32(len(seq))); err != nil {
			return err
		}

		for _, h := range seq {
			if err := encodeHash(buf, h); err != nil {
				return err
			}
		}

		return nil
	case hash.TagSharedHash:
		sh, _ := v.AsSharedHash()
		return encodeHash(buf, sh.H)
	case hash.TagVectorSharedHash:
		seq, _ := v.AsVectorSharedHash()

		if err := binary.Write(buf, binary.BigEndian, uint32(len(seq))); err != nil {
			return err
		}

		for _, sh := range seq {
			if err := encodeHash(buf, sh.H); err != nil {
				return err
			}
		}

		return nil
	default:
		if v.Tag().IsVector() {
			return encodeScalarVector(buf, v)
		}

		return fmt.Errorf("%w: %s", ErrUnsupportedTag, v.Tag())
	}
}

func writeBytes(buf *bytes.Buffer, b []byte) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}

	_, err := buf.Write(b)

	return err
}

func encodeScalarVector(buf *bytes.Buffer, v hash.Value) error {
	seq := v.Seq()

	switch s := seq.(type) {
	case []string:
		if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
			return err
		}

		for _, e := range s {
			if err := writeBytes(buf, []byte(e)); err != nil {
				return err
			}
		}

		return nil
	default:
		return writeFixedVector(buf, seq)
	}
}

func writeFixedVector(buf *bytes.Buffer, seq any) error {
	switch s := seq.(type) {
	case []bool:
		if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
			return err
		}

		for _, e := range s {
			var n uint8
			if e {
				n = 1
			}

			if err := binary.Write(buf, binary.BigEndian, n); err != nil {
				return err
			}
		}

		return nil
	case []int8:
		return writeLenPrefixed(buf, s)
	case []uint8:
		return writeLenPrefixed(buf, s)
	case []int16:
		return writeLenPrefixed(buf, s)
	case []uint16:
		return writeLenPrefixed(buf, s)
	case []int32:
		return writeLenPrefixed(buf, s)
	case []uint32:
		return writeLenPrefixed(buf, s)
	case []int64:
		return writeLenPrefixed(buf, s)
	case []uint64:
		return writeLenPrefixed(buf, s)
	case []float32:
		return writeLenPrefixed(buf, s)
	case []float64:
		return writeLenPrefixed(buf, s)
	case []complex64:
		return writeLenPrefixed(buf, s)
	case []complex128:
		return writeLenPrefixed(buf, s)
	default:
		return fmt.Errorf("%w: unhandled sequence type %T", ErrUnsupportedTag, seq)
	}
}

func writeLenPrefixed[T any](buf *bytes.Buffer, s []T) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}

	return binary.Write(buf, binary.BigEndian, s)
}

func decodeHash(r *bytes.Reader) (*hash.Hash, error) {
	return decodeHashN(r)
}

func readKey(r *bytes.Reader) (string, error) {
	var klen uint16
	if err := binary.Read(r, binary.BigEndian, &klen); err != nil {
		return "", fmt.Errorf("%w: key length: %w", ErrTruncated, err)
	}

	buf := make([]byte, klen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: key bytes: %w", ErrTruncated, err)
	}

	return string(buf), nil
}

func readTag(r *bytes.Reader) (hash.Tag, error) {
	n, err := readU32(r)
	if err != nil {
		return hash.TagNone, err
	}

	return hash.Tag(n), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	return n, nil
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	return buf, nil
}

func decodeValue(r *bytes.Reader, tag hash.Tag) (hash.Value, error) {
	switch tag {
	case hash.TagNone:
		return hash.None(), nil
	case hash.TagBool:
		var n uint8
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return hash.Value{}, fmt.Errorf("%w: %w", ErrTruncated, err)
		}

		return hash.NewBool(n != 0), nil
	case hash.TagInt8:
		var n int8
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewInt8(n), wrapTrunc(err)
	case hash.TagUint8:
		var n uint8
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewUint8(n), wrapTrunc(err)
	case hash.TagInt16:
		var n int16
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewInt16(n), wrapTrunc(err)
	case hash.TagUint16:
		var n uint16
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewUint16(n), wrapTrunc(err)
	case hash.TagInt32:
		var n int32
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewInt32(n), wrapTrunc(err)
	case hash.TagUint32:
		var n uint32
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewUint32(n), wrapTrunc(err)
	case hash.TagInt64:
		var n int64
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewInt64(n), wrapTrunc(err)
	case hash.TagUint64:
		var n uint64
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewUint64(n), wrapTrunc(err)
	case hash.TagFloat32:
		var n float32
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewFloat32(n), wrapTrunc(err)
	case hash.TagFloat64:
		var n float64
		err := binary.Read(r, binary.BigEndian, &n)

		return hash.NewFloat64(n), wrapTrunc(err)
	case hash.TagComplex64:
		var re, im float32
		if err := binary.Read(r, binary.BigEndian, &re); err != nil {
			return hash.Value{}, wrapTrunc(err)
		}

		if err := binary.Read(r, binary.BigEndian, &im); err != nil {
			return hash.Value{}, wrapTrunc(err)
		}

		return hash.NewComplex64(complex(re, im)), nil
	case hash.TagComplex128:
		var re, im float64
		if err := binary.Read(r, binary.BigEndian, &re); err != nil {
			return hash.Value{}, wrapTrunc(err)
		}

		if err := binary.Read(r, binary.BigEndian, &im); err != nil {
			return hash.Value{}, wrapTrunc(err)
		}

		return hash.NewComplex128(complex(re, im)), nil
	case hash.TagString:
		b, err := readBytes(r)
		if err != nil {
			return hash.Value{}, err
		}

		return hash.NewString(string(b)), nil
	case hash.TagBytes:
		b, err := readBytes(r)

		return hash.NewBytes(b), err
	case hash.TagHash:
		h, err := decodeHashN(r)

		return hash.NewHash(h), err
	case hash.TagVectorHash, hash.TagSharedHash, hash.TagVectorSharedHash:
		return decodeHashVariant(r, tag)
	default:
		if tag.IsVector() {
			return decodeScalarVector(r, tag)
		}

		return hash.Value{}, fmt.Errorf("%w: tag %d", ErrUnsupportedTag, tag)
	}
}

func wrapTrunc(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrTruncated, err)
}

// decodeHashN decodes one Hash: a 4-byte node count, then that many
// key/tag/attributes/value records. It is used for the top-level Decode
// call and for every nested Hash encountered inside a value.
func decodeHashN(r *bytes.Reader) (*hash.Hash, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, wrapTrunc(err)
	}

	out := hash.New()

	for i := uint32(0); i < count; i++ {
		key, err := readKey(r)
		if err != nil {
			return nil, err
		}

		tag, err := readTag(r)
		if err != nil {
			return nil, err
		}

		attrCount, err := readU32(r)
		if err != nil {
			return nil, err
		}

		var (
			akeys []string
			avals []hash.Value
		)

		for j := uint32(0); j < attrCount; j++ {
			akey, err := readKey(r)
			if err != nil {
				return nil, err
			}

			atag, err := readTag(r)
			if err != nil {
				return nil, err
			}

			av, err := decodeValue(r, atag)
			if err != nil {
				return nil, err
			}

			akeys = append(akeys, akey)
			avals = append(avals, av)
		}

		v, err := decodeValue(r, tag)
		if err != nil {
			return nil, err
		}

		if err := out.Set(key, v); err != nil {
			return nil, err
		}

		for j, akey := range akeys {
			if err := out.SetAttribute(key, akey, avals[j]); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func decodeHashVariant(r *bytes.Reader, tag hash.Tag) (hash.Value, error) {
	switch tag {
	case hash.TagSharedHash:
		h, err := decodeHashN(r)
		if err != nil {
			return hash.Value{}, err
		}

		return hash.NewSharedHash(&hash.SharedHash{H: h}), nil
	case hash.TagVectorHash, hash.TagVectorSharedHash:
		n, err := readU32(r)
		if err != nil {
			return hash.Value{}, err
		}

		seq := make([]*hash.Hash, n)

		for i := uint32(0); i < n; i++ {
			h, err := decodeHashN(r)
			if err != nil {
				return hash.Value{}, err
			}

			seq[i] = h
		}

		if tag == hash.TagVectorSharedHash {
			shSeq := make([]*hash.SharedHash, n)
			for i, h := range seq {
				shSeq[i] = &hash.SharedHash{H: h}
			}

			return hash.NewVectorSharedHash(shSeq), nil
		}

		return hash.NewVectorHash(seq), nil
	default:
		return hash.Value{}, fmt.Errorf("%w: tag %d", ErrUnsupportedTag, tag)
	}
}

func decodeScalarVector(r *bytes.Reader, tag hash.Tag) (hash.Value, error) {
	n, err := readU32(r)
	if err != nil {
		return hash.Value{}, err
	}

	switch tag {
	case hash.TagVectorString:
		out := make([]string, n)

		for i := uint32(0); i < n; i++ {
			b, err := readBytes(r)
			if err != nil {
				return hash.Value{}, err
			}

			out[i] = string(b)
		}

		return hash.NewVectorString(out), nil
	case hash.TagVectorBool:
		out := make([]bool, n)

		for i := uint32(0); i < n; i++ {
			var b uint8
			if err := binary.Read(r, binary.BigEndian, &b); err != nil {
				return hash.Value{}, wrapTrunc(err)
			}

			out[i] = b != 0
		}

		return hash.NewVectorBool(out), nil
	case hash.TagVectorInt8:
		return readFixed(r, n, hash.NewVectorInt8, make([]int8, n))
	case hash.TagVectorUint8:
		return readFixed(r, n, hash.NewVectorUint8, make([]uint8, n))
	case hash.TagVectorInt16:
		return readFixed(r, n, hash.NewVectorInt16, make([]int16, n))
	case hash.TagVectorUint16:
		return readFixed(r, n, hash.NewVectorUint16, make([]uint16, n))
	case hash.TagVectorInt32:
		return readFixed(r, n, hash.NewVectorInt32, make([]int32, n))
	case hash.TagVectorUint32:
		return readFixed(r, n, hash.NewVectorUint32, make([]uint32, n))
	case hash.TagVectorInt64:
		return readFixed(r, n, hash.NewVectorInt64, make([]int64, n))
	case hash.TagVectorUint64:
		return readFixed(r, n, hash.NewVectorUint64, make([]uint64, n))
	case hash.TagVectorFloat32:
		return readFixed(r, n, hash.NewVectorFloat32, make([]float32, n))
	case hash.TagVectorFloat64:
		return readFixed(r, n, hash.NewVectorFloat64, make([]float64, n))
	case hash.TagVectorComplex64:
		return readFixed(r, n, hash.NewVectorComplex64, make([]complex64, n))
	case hash.TagVectorComplex128:
		return readFixed(r, n, hash.NewVectorComplex128, make([]complex128, n))
	default:
		return hash.Value{}, fmt.Errorf("%w: tag %d", ErrUnsupportedTag, tag)
	}
}

func readFixed[T any](r *bytes.Reader, _ uint32, ctor func([]T) hash.Value, out []T) (hash.Value, error) {
	if err := binary.Read(r, binary.BigEndian, out); err != nil {
		return hash.Value{}, wrapTrunc(err)
	}

	return ctor(out), nil
}
