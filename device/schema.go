package device

import (
	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

// NewDefaultSchema returns the generic configuration schema every
// cmd/device-server process validates against: the state and
// alarmCondition leaves spec §4.3.2 requires every device expose, plus a
// writable heartbeatIntervalSeconds. A concrete device adds its own leaves on
// top of this by calling [schema.Schema.AddLeaf]/[schema.Schema.AddNode]
// before passing the schema to [NewServer]; SPEC_FULL.md's device-server
// carries no device-specific leaves of its own.
func NewDefaultSchema(rootName string) *schema.Schema {
	s := schema.New(rootName)

	must(s.AddLeaf("state",
		schema.WithValueType(hash.TagString),
		schema.WithLeafType(schema.LeafState),
		schema.WithAccessMode(schema.AccessRead),
		schema.WithOptions(statesAsAny()...),
		schema.WithDefault(string(schema.StateUnknown)),
	))

	must(s.AddLeaf("alarmCondition",
		schema.WithValueType(hash.TagString),
		schema.WithLeafType(schema.LeafAlarmCondition),
		schema.WithAccessMode(schema.AccessRead),
		schema.WithOptions(alarmsAsAny()...),
		schema.WithDefault(string(schema.AlarmNone)),
	))

	must(s.AddLeaf("heartbeatIntervalSeconds",
		schema.WithValueType(hash.TagInt32),
		schema.WithAccessMode(schema.AccessInit|schema.AccessRead|schema.AccessWrite),
		schema.WithDefault(int32(5)),
		schema.WithBounds(int32(1), int32(3600)),
	))

	return s
}

func statesAsAny() []any {
	states := schema.KnownStates()
	out := make([]any, len(states))

	for i, st := range states {
		out[i] = string(st)
	}

	return out
}

func alarmsAsAny() []any {
	alarms := schema.KnownAlarmConditions()
	out := make([]any, len(alarms))

	for i, a := range alarms {
		out[i] = string(a)
	}

	return out
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
