// Package wire encodes a [messaging.Envelope] for transport over AMQP,
// built entirely on [go.karabo.dev/control/hash/wire]'s binary hash codec
// (spec §6): an envelope is just its header and body hash nested under
// two fixed keys of one outer hash, so no new wire format is needed.
package wire

import (
	"fmt"

	"go.karabo.dev/control/hash"
	hashwire "go.karabo.dev/control/hash/wire"
	"go.karabo.dev/control/messaging"
)

const (
	keyHeader = "header"
	keyBody   = "body"
)

// BinaryCodec encodes/decodes [messaging.Envelope] values using
// [hashwire.BinaryCodec] as the underlying byte format.
type BinaryCodec struct{}

// EncodeEnvelope serializes env's header and body into one binary blob.
func (BinaryCodec) EncodeEnvelope(env messaging.Envelope) ([]byte, error) {
	outer := hash.New()

	header := env.Header
	if header == nil {
		header = hash.New()
	}

	body := env.Body
	if body == nil {
		body = hash.New()
	}

	if err := outer.Set(keyHeader, header); err != nil {
		return nil, fmt.Errorf("messaging/amqp/wire: set header: %w", err)
	}
	if err := outer.Set(keyBody, body); err != nil {
		return nil, fmt.Errorf("messaging/amqp/wire: set body: %w", err)
	}

	return hashwire.BinaryCodec{}.Encode(outer)
}

// DecodeEnvelope reconstructs an Envelope from bytes produced by
// EncodeEnvelope.
func (BinaryCodec) DecodeEnvelope(data []byte) (messaging.Envelope, error) {
	outer, err := hashwire.BinaryCodec{}.Decode(data)
	if err != nil {
		return messaging.Envelope{}, fmt.Errorf("messaging/amqp/wire: decode: %w", err)
	}

	header, err := outer.GetHash(keyHeader)
	if err != nil {
		return messaging.Envelope{}, fmt.Errorf("messaging/amqp/wire: missing header: %w", err)
	}

	body, err := outer.GetHash(keyBody)
	if err != nil {
		return messaging.Envelope{}, fmt.Errorf("messaging/amqp/wire: missing body: %w", err)
	}

	return messaging.Envelope{Header: header, Body: body}, nil
}
