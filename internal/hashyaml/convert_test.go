package hashyaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/internal/hashyaml"
)

func TestDecodeConvertsNestedMappingsAndSequences(t *testing.T) {
	data := []byte(`
speed: 7
name: motor-1
tags:
  - fast
  - east-wing
hardware:
  serial: ABC123
`)

	h, err := hashyaml.Decode(data)
	require.NoError(t, err)

	speed, err := h.GetInt32("speed")
	require.NoError(t, err)
	assert.Equal(t, int32(7), speed)

	name, err := h.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "motor-1", name)

	tags, err := h.GetVectorString("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"fast", "east-wing"}, tags)

	serial, err := h.GetString("hardware.serial")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", serial)
}

func TestEncodeRendersHashAsYAML(t *testing.T) {
	h := hash.New()
	require.NoError(t, h.Set("speed", int32(7)))
	require.NoError(t, h.Set("name", "motor-1"))

	out, err := hashyaml.Encode(h)
	require.NoError(t, err)
	assert.Contains(t, string(out), "speed:")
	assert.Contains(t, string(out), "name: motor-1")
}

func TestDecodeRoundTripsThroughEncode(t *testing.T) {
	data := []byte("speed: 7\nname: motor-1\n")

	h, err := hashyaml.Decode(data)
	require.NoError(t, err)

	out, err := hashyaml.Encode(h)
	require.NoError(t, err)

	h2, err := hashyaml.Decode(out)
	require.NoError(t, err)

	speed, err := h2.GetInt32("speed")
	require.NoError(t, err)
	assert.Equal(t, int32(7), speed)
}
