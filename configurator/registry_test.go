package configurator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/configurator"
	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

type motor struct {
	serial   string
	velocity float64
}

func registerMotor(t *testing.T, r *configurator.Registry) {
	t.Helper()

	r.RegisterSchemaFunction("Motor", func(s *schema.Schema) error {
		if err := s.AddLeaf("serial",
			schema.WithValueType(hash.TagString),
			schema.WithAssignment(schema.AssignmentMandatory),
		); err != nil {
			return err
		}

		return s.AddLeaf("velocity",
			schema.WithValueType(hash.TagFloat64),
			schema.WithDefault(0.0),
		)
	})

	r.RegisterClass("Motor", func(cfg *hash.Hash) (any, error) {
		serial, _ := cfg.Get("serial")
		velocity, _ := cfg.Get("velocity")

		s, _ := serial.AsString()
		v, _ := velocity.AsFloat64()

		return &motor{serial: s, velocity: v}, nil
	})
}

func TestCreateValidatesAndInvokesConstructor(t *testing.T) {
	t.Parallel()

	r := configurator.New()
	registerMotor(t, r)

	cfg := hash.New()
	require.NoError(t, cfg.Set("serial", "ABC123"))

	inst, err := r.Create("Motor", cfg, true)
	require.NoError(t, err)

	m, ok := inst.(*motor)
	require.True(t, ok)
	assert.Equal(t, "ABC123", m.serial)
	assert.Equal(t, 0.0, m.velocity, "default injected")
}

func TestCreateRejectsUnknownClass(t *testing.T) {
	t.Parallel()

	r := configurator.New()

	_, err := r.Create("Nonexistent", hash.New(), true)
	require.ErrorIs(t, err, configurator.ErrLogic)
}

func TestCreateFromConfigRequiresSingleRootKey(t *testing.T) {
	t.Parallel()

	r := configurator.New()
	registerMotor(t, r)

	inner := hash.New()
	require.NoError(t, inner.Set("serial", "ABC123"))

	cfg := hash.New()
	require.NoError(t, cfg.Set("Motor", hash.NewHash(inner)))

	inst, err := r.CreateFromConfig(cfg, true)
	require.NoError(t, err)

	m, ok := inst.(*motor)
	require.True(t, ok)
	assert.Equal(t, "ABC123", m.serial)
}

func TestCreateFromConfigRejectsMultipleRootKeys(t *testing.T) {
	t.Parallel()

	r := configurator.New()

	cfg := hash.New()
	require.NoError(t, cfg.Set("Motor", hash.New()))
	require.NoError(t, cfg.Set("Other", hash.New()))

	_, err := r.CreateFromConfig(cfg, true)
	require.ErrorIs(t, err, configurator.ErrLogic)
}

func TestGetSchemaChainsSchemaFunctionsInRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := configurator.New()

	r.RegisterSchemaFunction("Base", func(s *schema.Schema) error {
		return s.AddLeaf("a", schema.WithValueType(hash.TagString))
	})
	r.RegisterSchemaFunction("Base", func(s *schema.Schema) error {
		return s.AddLeaf("b", schema.WithValueType(hash.TagString))
	})

	s, err := r.GetSchema("Base", nil)
	require.NoError(t, err)
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
	assert.Equal(t, []string{"a", "b"}, s.GetKeys(""))
}

func TestRegisterClassReregistrationDoesNotPanic(t *testing.T) {
	t.Parallel()

	r := configurator.New()

	called := false
	r.RegisterClass("Motor", func(cfg *hash.Hash) (any, error) { return nil, nil })
	r.RegisterClass("Motor", func(cfg *hash.Hash) (any, error) {
		called = true

		return nil, nil
	})

	_, err := r.Create("Motor", hash.New(), false)
	require.NoError(t, err)
	assert.True(t, called, "second registration wins")
}
