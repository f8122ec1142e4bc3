package literal

import (
	"errors"
	"fmt"

	"go.karabo.dev/control/hash"
)

// ErrUnknownToken indicates a wire token did not match any known tag.
var ErrUnknownToken = errors.New("unknown literal token")

var tagToToken = map[hash.Tag]string{
	hash.TagNone:             "NONE",
	hash.TagBool:             "BOOL",
	hash.TagInt8:             "INT8",
	hash.TagUint8:            "UINT8",
	hash.TagInt16:            "INT16",
	hash.TagUint16:           "UINT16",
	hash.TagInt32:            "INT32",
	hash.TagUint32:           "UINT32",
	hash.TagInt64:            "INT64",
	hash.TagUint64:           "UINT64",
	hash.TagFloat32:          "FLOAT",
	hash.TagFloat64:          "DOUBLE",
	hash.TagComplex64:        "COMPLEX_FLOAT",
	hash.TagComplex128:       "COMPLEX_DOUBLE",
	hash.TagString:           "STRING",
	hash.TagBytes:            "BYTE_ARRAY",
	hash.TagVectorBool:       "VECTOR_BOOL",
	hash.TagVectorInt8:       "VECTOR_INT8",
	hash.TagVectorUint8:      "VECTOR_UINT8",
	hash.TagVectorInt16:      "VECTOR_INT16",
	hash.TagVectorUint16:     "VECTOR_UINT16",
	hash.TagVectorInt32:      "VECTOR_INT32",
	hash.TagVectorUint32:     "VECTOR_UINT32",
	hash.TagVectorInt64:      "VECTOR_INT64",
	hash.TagVectorUint64:     "VECTOR_UINT64",
	hash.TagVectorFloat32:    "VECTOR_FLOAT",
	hash.TagVectorFloat64:    "VECTOR_DOUBLE",
	hash.TagVectorComplex64:  "VECTOR_COMPLEX_FLOAT",
	hash.TagVectorComplex128: "VECTOR_COMPLEX_DOUBLE",
	hash.TagVectorString:     "VECTOR_STRING",
	hash.TagHash:             "HASH",
	hash.TagVectorHash:       "VECTOR_HASH",
	hash.TagSharedHash:       "HASH",
	hash.TagVectorSharedHash: "VECTOR_HASH",
	hash.TagSchema:           "SCHEMA",
}

var tokenToTag = func() map[string]hash.Tag {
	m := make(map[string]hash.Tag, len(tagToToken))
	for t, s := range tagToToken {
		// HASH and VECTOR_HASH are ambiguous with their shared-reference
		// counterparts on the wire; decode always produces the owned
		// variant, matching the fact that a deserialized value is never
		// itself a shared reference until re-published.
		if t == hash.TagSharedHash || t == hash.TagVectorSharedHash {
			continue
		}

		m[s] = t
	}

	return m
}()

// TokenOf returns the wire token for t.
func TokenOf(t hash.Tag) (string, error) {
	s, ok := tagToToken[t]
	if !ok {
		return "", fmt.Errorf("%w: tag %d", ErrUnknownToken, t)
	}

	return s, nil
}

// TagOf returns the tag named by token.
func TagOf(token string) (hash.Tag, error) {
	t, ok := tokenToTag[token]
	if !ok {
		return hash.TagNone, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}

	return t, nil
}
