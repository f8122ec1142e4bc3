package schema

// AccessLevel is the monotonic privilege ladder referenced by
// requiredAccessLevel (§3.4, invariant S5).
type AccessLevel int

const (
	AccessLevelObserver AccessLevel = iota
	AccessLevelUser
	AccessLevelOperator
	AccessLevelExpert
	AccessLevelAdmin
)

func (l AccessLevel) String() string {
	switch l {
	case AccessLevelObserver:
		return "observer"
	case AccessLevelUser:
		return "user"
	case AccessLevelOperator:
		return "operator"
	case AccessLevelExpert:
		return "expert"
	case AccessLevelAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// State is a token from the known device-state vocabulary that a state
// leaf's value must belong to (spec §4.3.2, invariant S4). Individual
// leaves narrow this further with their own options attribute.
type State string

const (
	StateUnknown  State = "UNKNOWN"
	StateInit     State = "INIT"
	StateNormal   State = "NORMAL"
	StateError    State = "ERROR"
	StateRunning  State = "RUNNING"
	StatePaused   State = "PAUSED"
	StateActive   State = "ACTIVE"
	StatePassive  State = "PASSIVE"
	StateDisabled State = "DISABLED"
	StateStarted  State = "STARTED"
	StateStopped  State = "STOPPED"
	StateOn       State = "ON"
	StateOff      State = "OFF"
	StateOpening  State = "OPENING"
	StateOpened   State = "OPENED"
	StateClosing  State = "CLOSING"
	StateClosed   State = "CLOSED"
)

// KnownStates returns the full, fixed state vocabulary (spec §4.2's
// "known state set"). Every state leaf's value is checked against it; a
// leaf narrows it further through its own options attribute.
func KnownStates() []State {
	return []State{
		StateUnknown, StateInit, StateNormal, StateError, StateRunning, StatePaused,
		StateActive, StatePassive, StateDisabled, StateStarted, StateStopped,
		StateOn, StateOff, StateOpening, StateOpened, StateClosing, StateClosed,
	}
}

// IsKnownState reports whether s belongs to [KnownStates].
func IsKnownState(s State) bool {
	for _, k := range KnownStates() {
		if k == s {
			return true
		}
	}

	return false
}

// AlarmCondition is the token vocabulary for alarm-condition leaves.
type AlarmCondition string

const (
	AlarmNone      AlarmCondition = "none"
	AlarmWarn      AlarmCondition = "warn"
	AlarmWarnLow   AlarmCondition = "warnLow"
	AlarmWarnHigh  AlarmCondition = "warnHigh"
	AlarmAlarm     AlarmCondition = "alarm"
	AlarmAlarmLow  AlarmCondition = "alarmLow"
	AlarmAlarmHigh AlarmCondition = "alarmHigh"
	AlarmInterlock AlarmCondition = "interlock"
)

// KnownAlarmConditions returns the fixed alarm-condition vocabulary.
func KnownAlarmConditions() []AlarmCondition {
	return []AlarmCondition{
		AlarmNone, AlarmWarn, AlarmWarnLow, AlarmWarnHigh,
		AlarmAlarm, AlarmAlarmLow, AlarmAlarmHigh, AlarmInterlock,
	}
}

// IsKnownAlarmCondition reports whether c belongs to [KnownAlarmConditions].
func IsKnownAlarmCondition(c AlarmCondition) bool {
	for _, k := range KnownAlarmConditions() {
		if k == c {
			return true
		}
	}

	return false
}

// stateRank orders the known state vocabulary by significance: when a
// parent device aggregates the states of several children, the highest-
// ranked state among them is the one that should be surfaced. Grounded on
// original_source/src/karabo/util/AlarmConditions.cc's rank field and its
// returnMostSignificant reduction, generalized from the alarm-condition
// vocabulary (rank 0-3, NONE..INTERLOCK) to the state vocabulary: ERROR
// outranks everything (something concrete is wrong), UNKNOWN is next
// (nothing is known, which a caller must not mistake for "fine"), then
// states in active transition outrank steady-state ones, which in turn
// outrank a device that isn't even engaged.
var stateRank = map[State]int{
	StateError:    9,
	StateUnknown:  8,
	StateOpening:  7,
	StateClosing:  7,
	StateStarted:  6,
	StateStopped:  6,
	StateRunning:  5,
	StatePaused:   5,
	StateActive:   4,
	StateNormal:   3,
	StateOn:       3,
	StateOpened:   3,
	StatePassive:  2,
	StateOff:      2,
	StateClosed:   2,
	StateInit:     1,
	StateDisabled: 0,
}

// rankOf returns s's significance rank, defaulting unranked states (there
// are none in [KnownStates], but a caller may pass an arbitrary token) to
// the same rank as [StateUnknown] rather than silently treating them as
// least significant.
func rankOf(s State) int {
	if r, ok := stateRank[s]; ok {
		return r
	}

	return stateRank[StateUnknown]
}

// StateSignifier returns the most significant state among states, per
// [stateRank]'s priority order, and false if states is empty. Ties are
// broken by first occurrence, matching returnMostSignificant's "only
// replace the running winner on a strictly higher rank" reduction.
func StateSignifier(states []State) (State, bool) {
	if len(states) == 0 {
		return StateUnknown, false
	}

	winner := states[0]
	best := rankOf(winner)

	for _, s := range states[1:] {
		if r := rankOf(s); r > best {
			winner, best = s, r
		}
	}

	return winner, true
}
