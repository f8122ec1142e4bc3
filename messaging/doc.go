// Package messaging implements the signal/slot messaging fabric (spec
// §4.5): addressable asynchronous communication between instances over a
// broker-attached publish/subscribe layer.
//
// An [Instance] owns named [Signal]s (outbound), [Slot]s (inbound,
// targeted), and global slots (inbound, broadcast). Emitting a signal
// publishes an [Envelope] to the broker; a slot is invoked when a message
// whose slotFunctions header names it arrives. A slot call may produce a
// typed reply awaited through a [Future].
//
// [Broker] is the transport seam: [go.karabo.dev/control/messaging/inproc]
// provides a single-process implementation grounded on the teacher's
// `log/publisher.go` fan-out primitive; [go.karabo.dev/control/messaging/amqp]
// provides the three-exchange AMQP realization of §4.5.3/§6.
package messaging
