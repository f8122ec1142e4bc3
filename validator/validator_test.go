package validator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
	"go.karabo.dev/control/validator"
)

func buildMotorSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s := schema.New("Motor")

	require.NoError(t, s.AddLeaf("velocity",
		schema.WithValueType(hash.TagFloat64),
		schema.WithAssignment(schema.AssignmentOptional),
		schema.WithDefault(0.0),
		schema.WithBounds(-100.0, 100.0),
	))

	require.NoError(t, s.AddLeaf("serial",
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

func TestValidateInjectsDefaultsAndCastsOnMandatoryPresence(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))

	ok, diag, out := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
		InjectDefaults:             true,
	}, time.Unix(0, 0))

	require.True(t, ok, diag)

	v, found := out.Find("velocity")
	require.True(t, found)

	f, _ := v.AsFloat64()
	assert.Equal(t, 0.0, f)
}

func TestValidateRejectsMissingMandatoryLeaf(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "serial")
	assert.Contains(t, diag, "mandatory")
}

func TestValidateRejectsOutOfBoundsValue(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))
	require.NoError(t, in.Set("velocity", 500.0))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "velocity")
}

func TestValidateRejectsAdditionalKeysByDefault(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))
	require.NoError(t, in.Set("bogus", 1))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "bogus")
}

func TestValidateAllowsAdditionalKeysWhenPermitted(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))
	require.NoError(t, in.Set("bogus", 1))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
		AllowAdditionalKeys:        true,
	}, time.Unix(0, 0))

	require.True(t, ok, diag)
}

func TestValidateRootsConfigurationByClassName(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	inner := hash.New()
	require.NoError(t, inner.Set("serial", "ABC123"))

	in := hash.New()
	require.NoError(t, in.Set("Motor", hash.NewHash(inner)))

	ok, diag, out := validator.Validate(s, in, validator.Rules{}, time.Unix(0, 0))
	require.True(t, ok, diag)

	v, found := out.Find("Motor")
	require.True(t, found)
	child, isHash := v.AsHash()
	require.True(t, isHash)
	assert.True(t, child.Has("serial"))
}

// scenario 4: Table validation.
func buildTableSchema(t *testing.T) *schema.Schema {
	t.Helper()

	row := schema.New("Row")
	require.NoError(t, row.AddLeaf("int",
		schema.WithValueType(hash.TagInt32),
		schema.WithDefault(int32(1)),
	))
	require.NoError(t, row.AddLeaf("str",
		schema.WithValueType(hash.TagString),
		schema.WithDefault("a string"),
	))

	s := schema.New("TableDevice")
	require.NoError(t, s.AddLeaf("rows",
		schema.WithValueType(hash.TagVectorHash),
		schema.WithRowSchema(row),
		schema.WithSize(1, 1),
	))

	return s
}

func TestValidateTableRejectsEmptySequence(t *testing.T) {
	t.Parallel()

	s := buildTableSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("rows", []*hash.Hash{}))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "must have at least")
}

func TestValidateTableRejectsTooManyRows(t *testing.T) {
	t.Parallel()

	s := buildTableSchema(t)

	row1 := hash.New()
	require.NoError(t, row1.Set("int", int32(1)))
	require.NoError(t, row1.Set("str", "a"))

	row2 := hash.New()
	require.NoError(t, row2.Set("int", int32(2)))
	require.NoError(t, row2.Set("str", "b"))

	in := hash.New()
	require.NoError(t, in.Set("rows", []*hash.Hash{row1, row2}))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "must have no more than")
}

func TestValidateTableAcceptsRowWithInjectedDefaultAndCast(t *testing.T) {
	t.Parallel()

	s := buildTableSchema(t)

	row := hash.New()
	require.NoError(t, row.Set("int", "2"))

	in := hash.New()
	require.NoError(t, in.Set("rows", []*hash.Hash{row}))

	ok, diag, out := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.True(t, ok, diag)

	v, found := out.Find("rows")
	require.True(t, found)

	rows, isSeq := v.AsVectorHash()
	require.True(t, isSeq)
	require.Len(t, rows, 1)

	iv, _ := rows[0].Find("int")
	i, _ := iv.AsInt32()
	assert.Equal(t, int32(2), i)

	sv, _ := rows[0].Find("str")
	str, _ := sv.AsString()
	assert.Equal(t, "a string", str)
}

// scenario 5: State element.
func buildStateSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s := schema.New("StateDevice")
	require.NoError(t, s.AddLeaf("state",
		schema.WithValueType(hash.TagString),
		schema.WithLeafType(schema.LeafState),
		schema.WithDefault(string(schema.StateUnknown)),
		schema.WithOptions("UNKNOWN", "NORMAL", "ERROR"),
	))

	return s
}

func TestValidateStateRejectsUnknownString(t *testing.T) {
	t.Parallel()

	s := buildStateSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("state", "NotAState"))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "is not a valid state string")
}

func TestValidateStateAcceptsKnownStringAndMarksIndicator(t *testing.T) {
	t.Parallel()

	s := buildStateSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("state", "ERROR"))

	ok, diag, out := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.True(t, ok, diag)

	attrs, has := out.NodeAttributes("state")
	require.True(t, has)
	assert.True(t, attrs.Has(validator.IndicateStateAttr))
}

func TestStrictModeRejectsAnyCastAndLeavesOutputEmpty(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))
	require.NoError(t, in.Set("velocity", "12")) // wrong variant: string, not float64

	ok, diag, out := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
		Strict:                    true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "velocity")
	assert.Equal(t, 0, out.Len())
}

// Fast path (every mutating flag off but AllowMissingKeys /
// AllowUnrootedConfiguration).
func buildNestedMotorSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s := buildMotorSchema(t)
	require.NoError(t, s.AddLeaf("axis.torque",
		schema.WithValueType(hash.TagFloat64),
		schema.WithAssignment(schema.AssignmentMandatory),
	))

	return s
}

func TestFastPathAcceptsPresentLeavesWithoutWalkingAbsentSchemaKeys(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))

	ok, diag, out := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
		AllowMissingKeys:           true,
	}, time.Unix(0, 0))

	require.True(t, ok, diag)
	assert.True(t, out.Has("serial"))
	assert.False(t, out.Has("velocity"), "fast path never visits a schema leaf the user omitted")
}

func TestFastPathRejectsUndeclaredKey(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))
	require.NoError(t, in.Set("bogus", 1))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
		AllowMissingKeys:           true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "bogus")
}

func TestFastPathStillCatchesMandatoryLeafMissingInAnEntirelyOmittedBranch(t *testing.T) {
	t.Parallel()

	s := buildNestedMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
	}, time.Unix(0, 0))

	require.False(t, ok)
	assert.Contains(t, diag, "axis")
	assert.Contains(t, diag, "torque")
}

func TestFastPathHonorsAllowMissingKeysOnAnOmittedBranch(t *testing.T) {
	t.Parallel()

	s := buildNestedMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))

	ok, diag, _ := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
		AllowMissingKeys:           true,
	}, time.Unix(0, 0))

	require.True(t, ok, diag)
}

func TestStrictModeAcceptsExactMatch(t *testing.T) {
	t.Parallel()

	s := buildMotorSchema(t)

	in := hash.New()
	require.NoError(t, in.Set("serial", "ABC123"))
	require.NoError(t, in.Set("velocity", 12.0))
	require.NoError(t, in.Set("state", "UNKNOWN"))

	ok, diag, out := validator.Validate(s, in, validator.Rules{
		AllowUnrootedConfiguration: true,
		Strict:                    true,
	}, time.Unix(0, 0))

	require.True(t, ok, diag)
	assert.Equal(t, 0, out.Len(), "strict mode leaves the validated output empty")
}
