package validator

import (
	"fmt"
	"time"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

// tableRowRules is the fixed rule set spec §4.3.4 mandates for validating
// an individual table row: declared column defaults are injected and
// ordinary casting is applied, but a mandatory column without one still
// fails rather than being synthesized.
var tableRowRules = Rules{InjectDefaults: true}

// validateTable validates a table leaf (one whose schema carries a
// rowSchema attribute): row-count bounds, then each row independently
// against rowSchema, short-circuiting on the first row failure.
func validateTable(s *schema.Schema, path string, userVal hash.Value, rules Rules, ts time.Time, diag *diagnostics) (hash.Value, bool) {
	rowSchema, err := s.RowSchema(path)
	if err != nil {
		diag.add(path, err.Error())

		return hash.Value{}, false
	}

	var rows []*hash.Hash

	switch userVal.Tag() {
	case hash.TagVectorHash:
		rows, _ = userVal.AsVectorHash()
	case hash.TagVectorString:
		strs, _ := userVal.Seq().([]string)
		if len(strs) != 0 {
			diag.add(path, "table leaf given a non-empty sequence of strings")

			return hash.Value{}, false
		}
	default:
		diag.add(path, fmt.Sprintf("table leaf given %s, want a sequence of maps", userVal.Tag()))

		return hash.Value{}, false
	}

	if minSize, maxSize, ok := s.SizeBounds(path); ok {
		if len(rows) < minSize {
			diag.add(path, fmt.Sprintf("must have at least %d row(s), has %d", minSize, len(rows)))

			return hash.Value{}, false
		}

		if maxSize >= 0 && len(rows) > maxSize {
			diag.add(path, fmt.Sprintf("must have no more than %d row(s), has %d", maxSize, len(rows)))

			return hash.Value{}, false
		}
	}

	out := make([]*hash.Hash, len(rows))

	for i, row := range rows {
		rowDiag := &diagnostics{}

		validatedRow := validateMap(rowSchema, "", row, tableRowRules, ts, rowDiag)
		if !rowDiag.empty() {
			diag.add(fmt.Sprintf("%s[%d]", path, i), rowDiag.String())

			return hash.Value{}, false
		}

		out[i] = validatedRow
	}

	return hash.NewVectorHash(out), true
}
