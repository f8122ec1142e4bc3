package validator

import (
	"fmt"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

// checkStrict implements rules.Strict: every schema leaf must be present
// with its variant matching exactly, no casting and no additional keys
// are tolerated anywhere in the tree.
func checkStrict(s *schema.Schema, prefix string, user *hash.Hash, diag *diagnostics) {
	sep := s.Tree().Separator()
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

		if s.IsLeaf(childPath) {
			if !hasUser {
				diag.add(childPath, "strict mode: required leaf not explicitly present")

				continue
			}

			want, err := s.GetValueType(childPath)
			if err != nil {
				diag.add(childPath, err.Error())

				continue
			}

			if userVal.Tag() != want {
				diag.add(childPath, fmt.Sprintf("strict mode: expected variant %s, got %s", want, userVal.Tag()))
			}

			continue
		}

		var childUser *hash.Hash
		if hasUser {
			childUser, _ = userVal.AsHash()
		}

		checkStrict(s, childPath, childUser, diag)
	}

	if user == nil {
		return
	}

	for _, key := range user.Keys() {
		if !known[key] {
			diag.add(joinPath(prefix, key, sep), "strict mode: key not declared by schema")
		}
	}
}
