// Package hashyaml converts between YAML documents and [hash.Hash] trees,
// the format cmd/device-server reads an initial configuration from and
// cmd/karaboctl prints a configuration reply in.
package hashyaml

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"go.karabo.dev/control/hash"
)

// Decode parses YAML bytes into a [*hash.Hash], converting nested mappings
// into child hashes and sequences into string/hash vectors on a
// best-effort basis.
func Decode(data []byte) (*hash.Hash, error) {
	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("hashyaml: unmarshal: %w", err)
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("hashyaml: document root is not a mapping")
	}

	return mapToHash(m)
}

// Encode renders h as YAML, converting child hashes back into nested
// mappings.
func Encode(h *hash.Hash) ([]byte, error) {
	out, err := yaml.Marshal(hashToMap(h))
	if err != nil {
		return nil, fmt.Errorf("hashyaml: marshal: %w", err)
	}

	return out, nil
}

func mapToHash(m map[string]any) (*hash.Hash, error) {
	h := hash.New()

	for key, v := range m {
		converted, err := convertValue(v)
		if err != nil {
			return nil, fmt.Errorf("hashyaml: key %q: %w", key, err)
		}

		if err := h.Set(key, converted); err != nil {
			return nil, fmt.Errorf("hashyaml: set %q: %w", key, err)
		}
	}

	return h, nil
}

func convertValue(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		return mapToHash(t)
	case []any:
		return convertSlice(t)
	case int:
		return int32(t), nil
	case uint64:
		return t, nil
	case int64:
		return t, nil
	case float64:
		return t, nil
	case bool:
		return t, nil
	case string:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported YAML scalar type %T", v)
	}
}

// convertSlice converts a YAML sequence. A sequence of mappings becomes a
// []*hash.Hash (TagVectorHash); a sequence of scalars is coerced to
// []string, the only vector type every scalar kind can always render as.
func convertSlice(items []any) (any, error) {
	if len(items) == 0 {
		return []string{}, nil
	}

	if _, ok := items[0].(map[string]any); ok {
		rows := make([]*hash.Hash, 0, len(items))

		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("sequence element %d is not a mapping like element 0", i)
			}

			row, err := mapToHash(m)
			if err != nil {
				return nil, err
			}

			rows = append(rows, row)
		}

		return rows, nil
	}

	strs := make([]string, 0, len(items))
	for _, item := range items {
		strs = append(strs, fmt.Sprintf("%v", item))
	}

	return strs, nil
}

func hashToMap(h *hash.Hash) map[string]any {
	out := make(map[string]any, h.Len())

	h.Each(func(key string, value hash.Value, _ hash.Attributes) {
		out[key] = valueToAny(value)
	})

	return out
}

func valueToAny(v hash.Value) any {
	switch v.Tag() {
	case hash.TagHash:
		if child, ok := v.AsHash(); ok {
			return hashToMap(child)
		}

		return nil
	case hash.TagVectorHash:
		if rows, ok := v.AsVectorHash(); ok {
			out := make([]any, 0, len(rows))
			for _, row := range rows {
				out = append(out, hashToMap(row))
			}

			return out
		}

		return nil
	case hash.TagString:
		s, _ := v.AsString()

		return s
	case hash.TagVectorString:
		if strs, ok := v.Seq().([]string); ok {
			return strs
		}

		return nil
	case hash.TagBool:
		b, _ := v.AsBool()

		return b
	case hash.TagInt32:
		i, _ := v.AsInt32()

		return i
	case hash.TagInt64:
		i, _ := v.AsInt64()

		return i
	case hash.TagFloat64:
		f, _ := v.AsFloat64()

		return f
	default:
		return fmt.Sprintf("%v", v)
	}
}
