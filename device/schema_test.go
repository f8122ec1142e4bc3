package device_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/device"
	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/validator"
)

func TestDefaultSchemaAcceptsEmptyConfigurationWithDefaults(t *testing.T) {
	s := device.NewDefaultSchema("genericDevice")

	accepted, diag, out := validator.Validate(s, hash.New(), validator.Rules{
		InjectDefaults:             true,
		AllowUnrootedConfiguration: true,
	}, time.Now())
	require.True(t, accepted, diag)

	state, err := out.GetString("state")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", state)

	interval, err := out.GetInt32("heartbeatIntervalSeconds")
	require.NoError(t, err)
	assert.Equal(t, int32(5), interval)
}

func TestDefaultSchemaRejectsOutOfBoundsHeartbeatInterval(t *testing.T) {
	s := device.NewDefaultSchema("genericDevice")

	cfg := hash.New()
	require.NoError(t, cfg.Set("heartbeatIntervalSeconds", int32(0)))

	accepted, _, _ := validator.Validate(s, cfg, validator.Rules{
		AllowUnrootedConfiguration: true,
		AllowMissingKeys:           true,
	}, time.Now())
	assert.False(t, accepted)
}
