package hash

import "fmt"

// typed accessors wrap Get with an exact-tag assertion. Callers needing a
// converting read should use [Hash.GetAs] instead.

func (h *Hash) GetBool(path string) (bool, error) {
	v, err := h.Get(path)
	if err != nil {
		return false, err
	}

	b, ok := v.AsBool()
	if !ok {
		return false, fmt.Errorf("%w: %q is %s, not bool", ErrTypeMismatch, path, v.Tag())
	}

	return b, nil
}

func (h *Hash) GetString(path string) (string, error) {
	v, err := h.Get(path)
	if err != nil {
		return "", err
	}

	s, ok := v.AsString()
	if !ok {
		return "", fmt.Errorf("%w: %q is %s, not string", ErrTypeMismatch, path, v.Tag())
	}

	return s, nil
}

func (h *Hash) GetInt32(path string) (int32, error) {
	v, err := h.Get(path)
	if err != nil {
		return 0, err
	}

	n, ok := v.AsInt32()
	if !ok {
		return 0, fmt.Errorf("%w: %q is %s, not int32", ErrTypeMismatch, path, v.Tag())
	}

	return n, nil
}

func (h *Hash) GetInt64(path string) (int64, error) {
	v, err := h.Get(path)
	if err != nil {
		return 0, err
	}

	n, ok := v.AsInt64()
	if !ok {
		return 0, fmt.Errorf("%w: %q is %s, not int64", ErrTypeMismatch, path, v.Tag())
	}

	return n, nil
}

func (h *Hash) GetFloat64(path string) (float64, error) {
	v, err := h.Get(path)
	if err != nil {
		return 0, err
	}

	f, ok := v.AsFloat64()
	if !ok {
		return 0, fmt.Errorf("%w: %q is %s, not float64", ErrTypeMismatch, path, v.Tag())
	}

	return f, nil
}

func (h *Hash) GetHash(path string) (*Hash, error) {
	v, err := h.Get(path)
	if err != nil {
		return nil, err
	}

	child, ok := v.AsHash()
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, not a map", ErrTypeMismatch, path, v.Tag())
	}

	return child, nil
}

func (h *Hash) GetVectorHash(path string) ([]*Hash, error) {
	v, err := h.Get(path)
	if err != nil {
		return nil, err
	}

	seq, ok := v.AsVectorHash()
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, not a sequence of maps", ErrTypeMismatch, path, v.Tag())
	}

	return seq, nil
}

func (h *Hash) GetVectorString(path string) ([]string, error) {
	v, err := h.Get(path)
	if err != nil {
		return nil, err
	}

	seq, ok := v.Seq().([]string)
	if !ok || v.Tag() != TagVectorString {
		return nil, fmt.Errorf("%w: %q is %s, not a string sequence", ErrTypeMismatch, path, v.Tag())
	}

	return seq, nil
}
