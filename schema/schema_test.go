package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

func buildMotor(t *testing.T) *schema.Schema {
	t.Helper()

	s := schema.New("Motor")

	require.NoError(t, s.AddLeaf("velocity",
		schema.WithValueType(hash.TagFloat64),
		schema.WithAccessMode(schema.AccessWrite|schema.AccessRead),
		schema.WithAssignment(schema.AssignmentOptional),
		schema.WithDefault(0.0),
		schema.WithBounds(-100.0, 100.0),
		schema.WithUnit("meter", "milli"),
	))

	require.NoError(t, s.AddNode("hardware", schema.WithNodeClassID("MotorHardware")))
	require.NoError(t, s.AddLeaf("hardware.serial",
		schema.WithValueType(hash.TagString),
		schema.WithAssignment(schema.AssignmentMandatory),
	))

	require.NoError(t, s.AddLeaf("state",
		schema.WithValueType(hash.TagString),
		schema.WithLeafType(schema.LeafState),
		schema.WithOptions("UNKNOWN", "NORMAL", "ERROR"),
		schema.WithAccessMode(schema.AccessRead),
	))

	return s
}

func TestAddLeafRequiresValueType(t *testing.T) {
	t.Parallel()

	s := schema.New("Bad")
	err := s.AddLeaf("x")
	require.ErrorIs(t, err, schema.ErrInvalidLeaf)
}

func TestAddLeafMarksAncestorsAsNodes(t *testing.T) {
	t.Parallel()

	s := buildMotor(t)

	nt, err := s.GetNodeType("hardware")
	require.NoError(t, err)
	assert.Equal(t, schema.NodeTypeNode, nt)

	nt, err = s.GetNodeType("hardware.serial")
	require.NoError(t, err)
	assert.Equal(t, schema.NodeTypeLeaf, nt)

	assert.True(t, s.IsLeaf("velocity"))
	assert.False(t, s.IsLeaf("hardware"))
}

func TestValueTypeRoundTrip(t *testing.T) {
	t.Parallel()

	s := buildMotor(t)

	vt, err := s.GetValueType("velocity")
	require.NoError(t, err)
	assert.Equal(t, hash.TagFloat64, vt)
}

func TestOptionsStoredAsStrings(t *testing.T) {
	t.Parallel()

	s := buildMotor(t)

	opts, ok := s.Options("state")
	require.True(t, ok)
	assert.Equal(t, []string{"UNKNOWN", "NORMAL", "ERROR"}, opts)
}

func TestAliasRegistryRoundTrip(t *testing.T) {
	t.Parallel()

	s := schema.New("Device")
	require.NoError(t, s.AddLeaf("speed",
		schema.WithValueType(hash.TagFloat64),
		schema.WithAlias("SPEED"),
	))

	p, ok := s.PathForAlias("SPEED")
	require.True(t, ok)
	assert.Equal(t, "speed", p)

	a, ok := s.AliasForPath("speed")
	require.True(t, ok)
	assert.Equal(t, "SPEED", a)
}

func TestSubSchemaRelativizesPaths(t *testing.T) {
	t.Parallel()

	s := buildMotor(t)

	sub, err := s.SubSchema("hardware")
	require.NoError(t, err)
	assert.True(t, sub.Has("serial"))
	assert.False(t, sub.Has("hardware.serial"))
}

func TestSubSchemaByRulesFiltersAccessMode(t *testing.T) {
	t.Parallel()

	s := buildMotor(t)

	sub := s.SubSchemaByRules(schema.AssemblyRules{
		AccessMode:  schema.AccessWrite,
		AccessLevel: schema.AccessLevelAdmin,
	})

	assert.True(t, sub.Has("velocity"), "velocity is read|write")
	assert.False(t, sub.Has("state"), "state is read-only")
}

func TestSubSchemaByPathsKeepsOnlyListed(t *testing.T) {
	t.Parallel()

	s := buildMotor(t)

	sub := s.SubSchemaByPaths([]string{"velocity"})
	assert.True(t, sub.Has("velocity"))
	assert.False(t, sub.Has("state"))
	assert.False(t, sub.Has("hardware.serial"))
}

func TestMergePreservesAttributesUnionWithOverwrite(t *testing.T) {
	t.Parallel()

	a := schema.New("Motor")
	require.NoError(t, a.AddLeaf("velocity",
		schema.WithValueType(hash.TagFloat64),
		schema.WithBounds(-10.0, 10.0),
	))

	b := schema.New("Motor")
	require.NoError(t, b.AddLeaf("velocity",
		schema.WithValueType(hash.TagFloat64),
		schema.WithBounds(-5.0, 5.0),
	))
	require.NoError(t, b.AddLeaf("acceleration", schema.WithValueType(hash.TagFloat64)))

	require.NoError(t, a.Merge(b))

	assert.True(t, a.Has("acceleration"), "unknown paths extend the target")

	minInc, maxInc, _, _, hasInc, _ := a.Bounds("velocity")
	require.True(t, hasInc)

	minF, _ := minInc.AsFloat64()
	maxF, _ := maxInc.AsFloat64()
	assert.Equal(t, -5.0, minF, "conflicting attribute overwritten by source")
	assert.Equal(t, 5.0, maxF)
}

func TestRowSchemaRejectsNestedTable(t *testing.T) {
	t.Parallel()

	inner := schema.New("Row")
	require.NoError(t, inner.AddLeaf("nested",
		schema.WithValueType(hash.TagVectorHash),
		schema.WithRowSchema(schema.New("NestedRow")),
	))

	outer := schema.New("Outer")
	err := outer.AddLeaf("rows",
		schema.WithValueType(hash.TagVectorHash),
		schema.WithRowSchema(inner),
	)
	require.ErrorIs(t, err, schema.ErrInvalidLeaf)
}

func TestToJSONSchemaMarksRequiredAndReadOnly(t *testing.T) {
	t.Parallel()

	s := buildMotor(t)
	doc := s.ToJSONSchema()

	require.Contains(t, doc.Properties, "state")
	assert.True(t, doc.Properties["state"].ReadOnly)

	hw := doc.Properties["hardware"]
	require.NotNil(t, hw)
	assert.Contains(t, hw.Required, "serial")
}
