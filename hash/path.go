package hash

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one separator-delimited component of a parsed [Path]: a key,
// and optionally a bracketed non-negative index into a sequence-of-maps
// value held under that key (spec §3.1, e.g. "a.b[2].c").
type Segment struct {
	Key      string
	Index    int
	HasIndex bool
}

// Path is a parsed, non-empty sequence of [Segment]s.
type Path []Segment

// String renders p back into separator-delimited form using sep.
func (p Path) String(sep byte) string {
	var b strings.Builder

	for i, seg := range p {
		if i > 0 {
			b.WriteByte(sep)
		}

		b.WriteString(seg.Key)

		if seg.HasIndex {
			fmt.Fprintf(&b, "[%d]", seg.Index)
		}
	}

	return b.String()
}

// ParsePath splits raw on sep into a [Path], extracting any bracketed
// index from each segment. It rejects malformed brackets and negative or
// non-integer indices with [ErrInvalidPath].
func ParsePath(raw string, sep byte) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	parts := strings.Split(raw, string(sep))
	path := make(Path, len(parts))

	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q of path %q: %w", ErrInvalidPath, part, raw, err)
		}

		path[i] = seg
	}

	return path, nil
}

func parseSegment(part string) (Segment, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return Segment{Key: part}, nil
	}

	if !strings.HasSuffix(part, "]") {
		return Segment{}, fmt.Errorf("unterminated index bracket")
	}

	key := part[:open]
	idxStr := part[open+1 : len(part)-1]

	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return Segment{}, fmt.Errorf("non-integer index %q: %w", idxStr, err)
	}

	if idx < 0 {
		return Segment{}, fmt.Errorf("negative index %d", idx)
	}

	return Segment{Key: key, Index: idx, HasIndex: true}, nil
}

// MustParsePath is like [ParsePath] but panics on error. It exists for
// call sites constructing paths from compile-time string literals.
func MustParsePath(raw string, sep byte) Path {
	p, err := ParsePath(raw, sep)
	if err != nil {
		panic(err)
	}

	return p
}
