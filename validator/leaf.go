package validator

import (
	"fmt"
	"time"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

// validateLeaf validates and casts a single schema leaf against the
// corresponding (possibly absent) user value (spec §4.3.2). It returns the
// value to store and whether the leaf should appear in the output at all
// (false for a leaf that was legitimately absent and has no default).
func validateLeaf(s *schema.Schema, path string, userVal hash.Value, hasUser bool, rules Rules, ts time.Time, diag *diagnostics) (hash.Value, bool) {
	want, err := s.GetValueType(path)
	if err != nil {
		diag.add(path, err.Error())

		return hash.Value{}, false
	}

	if !hasUser {
		return validateAbsentLeaf(s, path, want, rules, diag)
	}

	if s.IsTable(path) {
		return validateTable(s, path, userVal, rules, ts, diag)
	}

	if classID, ok := s.ClassID(path); ok {
		if v, done := validateClassLeaf(path, classID, userVal, diag); done {
			return v, true
		}
	}

	if userVal.IsNone() {
		if s.IsAliasing(path) {
			return userVal, true
		}

		if want != hash.TagNone {
			diag.add(path, "none value on a non-aliasing leaf")

			return hash.Value{}, false
		}
	}

	cast, ok := castUserValue(userVal, want)
	if !ok {
		diag.add(path, fmt.Sprintf("cannot cast %s to %s", userVal.Tag(), want))

		return hash.Value{}, false
	}

	if !checkBounds(s, path, cast, diag) {
		return hash.Value{}, false
	}

	if !checkStateOrAlarm(s, path, cast, diag) {
		return hash.Value{}, false
	}

	if !checkOptions(s, path, cast, diag) {
		return hash.Value{}, false
	}

	if !checkSize(s, path, cast, diag) {
		return hash.Value{}, false
	}

	return cast, true
}

func validateAbsentLeaf(s *schema.Schema, path string, want hash.Tag, rules Rules, diag *diagnostics) (hash.Value, bool) {
	assignment, _ := s.Assignment(path)

	if assignment == schema.AssignmentMandatory && !rules.AllowMissingKeys {
		diag.add(path, "mandatory leaf is missing")

		return hash.Value{}, false
	}

	if !rules.InjectDefaults {
		return hash.Value{}, false
	}

	dv, ok := s.DefaultValue(path)
	if !ok {
		return hash.Value{}, false
	}

	cast, ok := castUserValue(dv, want)
	if !ok {
		diag.add(path, "declared defaultValue does not match valueType")

		return hash.Value{}, false
	}

	return cast, true
}

// castUserValue applies the special-case casts of §4.3.2 before falling
// back to the general conversion matrix.
func castUserValue(v hash.Value, want hash.Tag) (hash.Value, bool) {
	if v.Tag() == want {
		return v, true
	}

	if v.Tag() == hash.TagVectorString && want == hash.TagVectorHash {
		if seq, ok := v.Seq().([]string); ok && len(seq) == 0 {
			return hash.NewVectorHash(nil), true
		}
	}

	conv, err := hash.Convert(v, want)
	if err != nil {
		return hash.Value{}, false
	}

	return conv, true
}

func checkBounds(s *schema.Schema, path string, v hash.Value, diag *diagnostics) bool {
	minInc, maxInc, minExc, maxExc, hasInc, hasExc := s.Bounds(path)
	if !hasInc && !hasExc {
		return true
	}

	f, ok := toFloat(v)
	if !ok {
		return true
	}

	if hasInc {
		if lo, ok := toFloat(minInc); ok && f < lo {
			diag.add(path, fmt.Sprintf("value %v below minInc %v", f, lo))

			return false
		}

		if hi, ok := toFloat(maxInc); ok && f > hi {
			diag.add(path, fmt.Sprintf("value %v above maxInc %v", f, hi))

			return false
		}
	}

	if hasExc {
		if lo, ok := toFloat(minExc); ok && f <= lo {
			diag.add(path, fmt.Sprintf("value %v not above minExc %v", f, lo))

			return false
		}

		if hi, ok := toFloat(maxExc); ok && f >= hi {
			diag.add(path, fmt.Sprintf("value %v not below maxExc %v", f, hi))

			return false
		}
	}

	return true
}

func checkOptions(s *schema.Schema, path string, v hash.Value, diag *diagnostics) bool {
	opts, ok := s.Options(path)
	if !ok || len(opts) == 0 {
		return true
	}

	conv, err := hash.Convert(v, hash.TagString)
	if err != nil {
		return true
	}

	str, _ := conv.AsString()

	for _, o := range opts {
		if o == str {
			return true
		}
	}

	diag.add(path, fmt.Sprintf("value %q not among declared options %v", str, opts))

	return false
}

func checkSize(s *schema.Schema, path string, v hash.Value, diag *diagnostics) bool {
	if !v.Tag().IsVector() && v.Tag() != hash.TagVectorHash {
		return true
	}

	minSize, maxSize, ok := s.SizeBounds(path)
	if !ok {
		return true
	}

	n := seqLen(v)

	if n < minSize {
		diag.add(path, fmt.Sprintf("must have at least %d element(s), has %d", minSize, n))

		return false
	}

	if maxSize >= 0 && n > maxSize {
		diag.add(path, fmt.Sprintf("must have no more than %d element(s), has %d", maxSize, n))

		return false
	}

	return true
}

func seqLen(v hash.Value) int {
	switch seq := v.Seq().(type) {
	case []bool:
		return len(seq)
	case []int8:
		return len(seq)
	case []uint8:
		return len(seq)
	case []int16:
		return len(seq)
	case []uint16:
		return len(seq)
	case []int32:
		return len(seq)
	case []uint32:
		return len(seq)
	case []int64:
		return len(seq)
	case []uint64:
		return len(seq)
	case []float32:
		return len(seq)
	case []float64:
		return len(seq)
	case []complex64:
		return len(seq)
	case []complex128:
		return len(seq)
	case []string:
		return len(seq)
	default:
		if hSeq, ok := v.AsVectorHash(); ok {
			return len(hSeq)
		}

		return 0
	}
}

func checkStateOrAlarm(s *schema.Schema, path string, v hash.Value, diag *diagnostics) bool {
	lt := s.LeafType(path)

	switch lt {
	case schema.LeafState:
		str, _ := v.AsString()
		if !schema.IsKnownState(schema.State(str)) {
			diag.add(path, fmt.Sprintf("%q is not a valid state string", str))

			return false
		}

		return true
	case schema.LeafAlarmCondition:
		str, _ := v.AsString()
		if !schema.IsKnownAlarmCondition(schema.AlarmCondition(str)) {
			diag.add(path, fmt.Sprintf("%q is not a valid alarm condition string", str))

			return false
		}

		return true
	default:
		return true
	}
}

func toFloat(v hash.Value) (float64, bool) {
	conv, err := hash.Convert(v, hash.TagFloat64)
	if err != nil {
		return 0, false
	}

	return conv.AsFloat64()
}

// validateClassLeaf handles the classId special cases of §4.3.2. done is
// true when the leaf was fully handled here (either accepted or rejected)
// and the generic cast/bounds pipeline should not run.
func validateClassLeaf(path, classID string, v hash.Value, diag *diagnostics) (hash.Value, bool) {
	switch classID {
	case "Slot":
		child, isHash := v.AsHash()
		if !isHash || child.Len() != 0 {
			diag.add(path, "Slot leaf accepts no payload")

			return hash.Value{}, true
		}

		return hash.NewHash(hash.New()), true
	case "NDArray":
		// shape/type checked by the registered class validator below, if any
	}

	if fn, ok := lookupClassValidator(classID); ok {
		out, err := fn(v.Raw())
		if err != nil {
			diag.add(path, err.Error())

			return hash.Value{}, true
		}

		wrapped, werr := hash.NewValue(out)
		if werr != nil {
			diag.add(path, werr.Error())

			return hash.Value{}, true
		}

		return wrapped, true
	}

	return v, false
}
