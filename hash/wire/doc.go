// Package wire defines the [Encoder] / [Decoder] interfaces for the
// binary message envelope format of spec §6, plus [BinaryCodec], a
// concrete implementation sufficient to round-trip the [hash.Hash] values
// carried by package messaging's envelopes and read by the broker rate
// monitor.
//
// This is deliberately not a general configuration-file serializer — spec
// §1 excludes file-format codecs from scope. BinaryCodec only needs to
// carry whatever a signal, slot call, or log record puts in a header or
// body: scalars, vectors, nested maps, and sequences of nested maps.
// Schema-valued nodes are rejected; nothing on the messaging fabric sends
// a schema as a value.
package wire
