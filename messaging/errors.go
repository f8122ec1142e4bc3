package messaging

import "errors"

var (
	// ErrTimeout is returned to a Future awaiter when a slot call's
	// timeout expires before a reply arrives (spec §4.5.2).
	ErrTimeout = errors.New("messaging: slot call timed out")
	// ErrBrokerDisconnected is returned to in-flight awaiters when the
	// broker connection is detected lost via missed heartbeats (spec
	// §4.5.2, §4.5.4).
	ErrBrokerDisconnected = errors.New("messaging: broker disconnected")
	// ErrCancelled is returned to an awaiter that cancelled its own wait
	// (spec §4.5.2): the callee is not preempted, its eventual reply is
	// discarded.
	ErrCancelled = errors.New("messaging: await cancelled")
	// ErrArgumentMismatch is returned when a slot's body doesn't unpack
	// into its declared argument types.
	ErrArgumentMismatch = errors.New("messaging: slot argument mismatch")
	// ErrUnknownSlot names a call to a slot the target instance has not
	// registered. [Instance] does not return it: such a call gets no reply,
	// and the caller's wait ends with [ErrTimeout].
	ErrUnknownSlot = errors.New("messaging: unknown slot")
	// ErrClosed is returned by a Broker operation attempted after Close.
	ErrClosed = errors.New("messaging: broker closed")
)
