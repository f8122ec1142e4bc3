// Package validator transforms an unvalidated [hash.Hash] into a validated
// one against a [schema.Schema], or fails with a precise diagnostic (spec
// §4.3). It never mutates its input; [Validate] always builds a fresh
// output map, following the same "merge with a priority side, fall gaps
// from the other" shape as magicschema's schema merge, generalized here
// to "cast the user's value to the schema's declared type, falling back to
// its default".
package validator
