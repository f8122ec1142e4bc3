package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/messaging"
)

func TestEncodeDecodeEnvelopeRoundTrips(t *testing.T) {
	env := messaging.NewEnvelope()
	require.NoError(t, env.Header.Set(messaging.HeaderSignalInstanceID, "motor-1"))
	require.NoError(t, env.Header.Set(messaging.HeaderSignalFunction, "stateChanged"))
	require.NoError(t, env.Body.Set("state", "MOVING"))
	require.NoError(t, env.Body.Set("speed", float64(3.5)))

	data, err := BinaryCodec{}.EncodeEnvelope(env)
	require.NoError(t, err)

	got, err := BinaryCodec{}.DecodeEnvelope(data)
	require.NoError(t, err)

	instanceID, err := got.Header.GetString(messaging.HeaderSignalInstanceID)
	require.NoError(t, err)
	assert.Equal(t, "motor-1", instanceID)

	state, err := got.Body.GetString("state")
	require.NoError(t, err)
	assert.Equal(t, "MOVING", state)

	speed, err := got.Body.GetFloat64("speed")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, speed, 1e-9)
}

func TestEncodeDecodeEnvelopeHandlesEmptyHeaderAndBody(t *testing.T) {
	env := messaging.Envelope{}

	data, err := BinaryCodec{}.EncodeEnvelope(env)
	require.NoError(t, err)

	got, err := BinaryCodec{}.DecodeEnvelope(data)
	require.NoError(t, err)

	assert.Equal(t, 0, got.Header.Len())
	assert.Equal(t, 0, got.Body.Len())
}
