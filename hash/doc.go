// Package hash implements the attributed ordered map: the sole in-memory
// representation for configuration, state, and message payloads in this
// module. A [Hash] is an ordered sequence of nodes, each holding a string
// key, a tagged [Value], and its own [Attributes] map of the same shape.
//
// Path addressing, typed get/set, merge/subtract, flatten/unflatten, and
// the two forms of equality ([Hash.Similar] and [Hash.FullyEqual]) are all
// implemented here. See package schema for the parallel tree that
// describes what a Hash should contain, and package validator for turning
// an unvalidated Hash into a validated one against a schema.
//
// Hash values are not safe for concurrent mutation: exactly one goroutine
// owns a *Hash at a time, and ownership transfers by [Hash.Clone] (copy)
// or by simply handing over the pointer (move). The shared-reference
// variants ([Value.AsSharedHash], [Value.AsVectorSharedHash]) may be read
// concurrently once published, but must not be mutated afterward.
package hash
