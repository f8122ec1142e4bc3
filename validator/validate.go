package validator

import (
	"fmt"
	"time"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

// TimestampAttr is the attribute name injected by rules.InjectTimestamps.
const TimestampAttr = "timestamp"

// IndicateStateAttr / IndicateAlarmAttr mark a validated state or
// alarm-condition leaf as the one that determines the device's reported
// state/alarm (spec §4.3.2).
const (
	IndicateStateAttr = "indicateState"
	IndicateAlarmAttr = "indicateAlarm"
)

// Validate checks input against s under rules, optionally injecting
// defaults and timestamps (stamped with ts). It returns whether the input
// was accepted, a diagnostic describing every rejection reason
// encountered, and, on acceptance, the validated map. input is never
// mutated. In strict mode the returned map is always empty, per spec
// §4.3.1.
func Validate(s *schema.Schema, input *hash.Hash, rules Rules, ts time.Time) (bool, string, *hash.Hash) {
	rules = rules.normalize()

	root, rootKey, err := unroot(s, input, rules)
	if err != nil {
		return false, err.Error(), nil
	}

	diag := &diagnostics{}

	if rules.Strict {
		checkStrict(s, "", root, diag)

		return diag.empty(), diag.String(), hash.New()
	}

	var validated *hash.Hash
	if rules.fastPathEligible() {
		validated = validateMapFast(s, "", root, rules, ts, diag)
	} else {
		validated = validateMap(s, "", root, rules, ts, diag)
	}

	if !diag.empty() {
		return false, diag.String(), nil
	}

	if rootKey == "" {
		return true, "", validated
	}

	out := hash.New()
	if err := out.Set(rootKey, validated); err != nil {
		return false, err.Error(), nil
	}

	return true, "", out
}

// unroot resolves input down to the map that should be validated directly
// against s's top level, per the allowUnrootedConfiguration flag. rootKey
// is the wrapper key to restore on the way out, or "" if none was peeled.
func unroot(s *schema.Schema, input *hash.Hash, rules Rules) (*hash.Hash, string, error) {
	if rules.AllowUnrootedConfiguration {
		return input, "", nil
	}

	keys := input.Keys()
	if len(keys) != 1 {
		return nil, "", fmt.Errorf("%w: expected a single root key %q, found %d", ErrRejected, s.GetRootName(), len(keys))
	}

	key := keys[0]
	if key != s.GetRootName() {
		return nil, "", fmt.Errorf("%w: expected root key %q, found %q", ErrRejected, s.GetRootName(), key)
	}

	v, _ := input.Get(key)

	child, ok := v.AsHash()
	if !ok {
		return nil, "", fmt.Errorf("%w: root value of %q is not a map", ErrRejected, key)
	}

	return child, key, nil
}

func joinPath(prefix, key string, sep byte) string {
	if prefix == "" {
		return key
	}

	return prefix + string(sep) + key
}

// validateMap validates every schema child declared under prefix against
// the corresponding key of user (which may be nil, meaning nothing was
// supplied at this level at all).
func validateMap(s *schema.Schema, prefix string, user *hash.Hash, rules Rules, ts time.Time, diag *diagnostics) *hash.Hash {
	sep := s.Tree().Separator()
	out := hash.New()

	if s.DisplayType(prefix) == schema.DisplayTypeOutputSchema {
		validateOutputSchemaNode(prefix, user, diag, out)

		return out
	}

	known := map[string]bool{}

	for _, key := range s.GetKeys(prefix) {
		known[key] = true

		childPath := joinPath(prefix, key, sep)

		var (
			userVal hash.Value
			hasUser bool
		)

		if user != nil {
			userVal, hasUser = user.Find(key)
		}

		if hasUser && user != nil {
			checkMisplacedIndicators(s, childPath, user, key, diag)
		}

		if s.IsLeaf(childPath) {
			val, present := validateLeaf(s, childPath, userVal, hasUser, rules, ts, diag)
			if present {
				_ = out.Set(key, val)
				applyLeafAttrs(s, out, key, childPath, user, hasUser, rules, ts)
			}

			continue
		}

		classID, hasClass := s.ClassID(childPath)
		if hasUser && hasClass && userVal.Tag() != hash.TagHash {
			_ = out.Set(key, userVal)
			_ = out.SetAttribute(key, hash.ClassIDAttr, classID)

			continue
		}

		var childUser *hash.Hash
		if hasUser {
			childUser, _ = userVal.AsHash()
		}

		child := validateMap(s, childPath, childUser, rules, ts, diag)

		if child.Len() > 0 || hasUser {
			_ = out.Set(key, child)
		}
	}

	if !rules.AllowAdditionalKeys && user != nil {
		for _, key := range user.Keys() {
			if !known[key] {
				diag.add(joinPath(prefix, key, sep), "key not declared by schema")
			}
		}
	}

	return out
}

// validateMapFast is the fast path of spec §4.3.1: it walks user instead of
// s's declared keys, for the rule combinations [Rules.fastPathEligible]
// allows (every mutating flag off except AllowMissingKeys and
// AllowUnrootedConfiguration). With InjectDefaults and AllowAdditionalKeys
// both always off under those rules, no schema leaf absent from user ever
// needs visiting to build output, and any key user supplies that the
// schema doesn't declare is rejected on sight rather than collected for a
// second pass. The one thing the full walk's schema-side iteration still
// buys - noticing a mandatory leaf the user left out - is recovered
// separately by [checkMandatoryPresence], which visits only the branches
// user omitted entirely.
func validateMapFast(s *schema.Schema, prefix string, user *hash.Hash, rules Rules, ts time.Time, diag *diagnostics) *hash.Hash {
	sep := s.Tree().Separator()
	out := hash.New()

	if s.DisplayType(prefix) == schema.DisplayTypeOutputSchema {
		validateOutputSchemaNode(prefix, user, diag, out)

		return out
	}

	if user != nil {
		for _, key := range user.Keys() {
			childPath := joinPath(prefix, key, sep)

			if !s.Has(childPath) {
				diag.add(childPath, "key not declared by schema")

				continue
			}

			checkMisplacedIndicators(s, childPath, user, key, diag)

			userVal, _ := user.Find(key)

			if s.IsLeaf(childPath) {
				val, present := validateLeaf(s, childPath, userVal, true, rules, ts, diag)
				if present {
					_ = out.Set(key, val)
					applyLeafAttrs(s, out, key, childPath, user, true, rules, ts)
				}

				continue
			}

			classID, hasClass := s.ClassID(childPath)
			if hasClass && userVal.Tag() != hash.TagHash {
				_ = out.Set(key, userVal)
				_ = out.SetAttribute(key, hash.ClassIDAttr, classID)

				continue
			}

			childUser, _ := userVal.AsHash()
			_ = out.Set(key, validateMapFast(s, childPath, childUser, rules, ts, diag))
		}
	}

	if !rules.AllowMissingKeys {
		checkMandatoryPresence(s, prefix, user, diag)
	}

	return out
}

// checkMandatoryPresence reports every mandatory leaf missing from user,
// without running the cast/bounds/default pipeline validateMap performs
// for every declared leaf. A branch user omitted entirely is still
// descended into, since a mandatory leaf can be nested arbitrarily deep
// beneath it.
func checkMandatoryPresence(s *schema.Schema, prefix string, user *hash.Hash, diag *diagnostics) {
	sep := s.Tree().Separator()

	for _, key := range s.GetKeys(prefix) {
		if user != nil && user.Has(key) {
			continue
		}

		childPath := joinPath(prefix, key, sep)

		if s.IsLeaf(childPath) {
			if a, err := s.Assignment(childPath); err == nil && a == schema.AssignmentMandatory {
				diag.add(childPath, "mandatory leaf is missing")
			}

			continue
		}

		checkMandatoryPresence(s, childPath, nil, diag)
	}
}

func validateOutputSchemaNode(prefix string, user *hash.Hash, diag *diagnostics, out *hash.Hash) {
	if user == nil {
		return
	}

	for _, key := range user.Keys() {
		v, _ := user.Find(key)

		child, isHash := v.AsHash()
		if !isHash || child.Len() != 0 {
			diag.add(joinPath(prefix, key, user.Separator()), "output schema node accepts only empty-map placeholders")

			continue
		}

		_ = out.Set(key, hash.New())
	}
}

func checkMisplacedIndicators(s *schema.Schema, childPath string, user *hash.Hash, key string, diag *diagnostics) {
	attrs, ok := user.NodeAttributes(key)
	if !ok {
		return
	}

	lt := s.LeafType(childPath)

	if attrs.Has(IndicateStateAttr) && lt != schema.LeafState {
		diag.add(childPath, "indicateState set on a non-state leaf")
	}

	if attrs.Has(IndicateAlarmAttr) && lt != schema.LeafAlarmCondition {
		diag.add(childPath, "indicateAlarm set on a non-alarm leaf")
	}
}

func applyLeafAttrs(s *schema.Schema, out *hash.Hash, key, childPath string, user *hash.Hash, hasUser bool, rules Rules, ts time.Time) {
	lt := s.LeafType(childPath)

	if lt == schema.LeafState {
		_ = out.SetAttribute(key, IndicateStateAttr, true)
	}

	if lt == schema.LeafAlarmCondition {
		_ = out.SetAttribute(key, IndicateAlarmAttr, true)
	}

	if !rules.InjectTimestamps {
		return
	}

	hasExisting := false

	if hasUser && user != nil {
		if attrs, ok := user.NodeAttributes(key); ok {
			hasExisting = attrs.Has(TimestampAttr)
		}
	}

	if hasExisting && !rules.ForceInjectedTimestamp {
		if attrs, ok := user.NodeAttributes(key); ok {
			if v, ok := attrs.Get(TimestampAttr); ok {
				_ = out.SetAttribute(key, TimestampAttr, v)
			}
		}

		return
	}

	_ = out.SetAttribute(key, TimestampAttr, ts.Format(time.RFC3339Nano))
}
