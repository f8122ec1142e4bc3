package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"go.karabo.dev/control/hash"
)

const defaultCallTimeout = 15 * time.Second

// replyFunction is the synthetic slot name a Call reply is routed under.
const replyFunction = "__reply__"

// SlotHandler processes a slot call's arguments and returns the reply body,
// or nil for a slot with no reply. Returning an error fails the call for
// the caller awaiting it.
type SlotHandler func(args *hash.Hash) (*hash.Hash, error)

// Slot is one inbound, addressable entry point an [Instance] exposes (spec
// §4.5.1). expectedTypes, when non-nil, is checked against the ordered
// "a1".."aN" argument tags carried in a call's body before Handler runs;
// a mismatch is reported as [ErrArgumentMismatch] without invoking Handler,
// matching the original implementation's SignalSlotable::registerSlot
// argument-arity guard (original_source/src/karabo/util/SignalHandler.hh).
type Slot struct {
	Name          string
	expectedTypes []hash.Tag
	Handler       SlotHandler
}

func argKey(i int) string { return fmt.Sprintf("a%d", i+1) }

func (s *Slot) checkArgs(args *hash.Hash) error {
	for i, want := range s.expectedTypes {
		v, err := args.Get(argKey(i))
		if err != nil {
			return fmt.Errorf("%w: slot %q expects %d argument(s), missing a%d", ErrArgumentMismatch, s.Name, len(s.expectedTypes), i+1)
		}
		if v.Tag() != want {
			return fmt.Errorf("%w: slot %q argument a%d is %s, want %s", ErrArgumentMismatch, s.Name, i+1, v.Tag(), want)
		}
	}

	return nil
}

// Signal is a named outbound channel an [Instance] emits on (spec §4.5.1).
type Signal struct {
	name string
	inst *Instance
}

// Emit publishes args on the signal's exchange, addressed to whichever
// instances have subscribed to it. args is keyed "a1".."aN" by the
// caller's convention; Emit does not itself enforce arity, mirroring the
// original's loosely-typed signal emission.
func (s *Signal) Emit(ctx context.Context, args *hash.Hash) error {
	env := NewEnvelope()
	env.Body = args
	_ = env.Header.Set(HeaderSignalInstanceID, s.inst.id)
	_ = env.Header.Set(HeaderSignalFunction, s.name)
	s.inst.stampNow(env.Header)

	return s.inst.broker.Publish(ctx, ExchangeSignals, RoutingKey(s.inst.id, s.name), env)
}

// replyWaiter is the bookkeeping a pending slot call keeps while awaiting
// its reply; resolved by the instance's delivery loop when a message with
// a matching replyTo correlation id arrives.
type replyWaiter struct {
	future *Future[*hash.Hash]
}

// Instance is a running, addressable endpoint on the bus (spec §4.5): it
// owns its declared signals and slots, and dispatches inbound deliveries
// to them one at a time, in arrival order, on a dedicated goroutine (spec
// §4.5.2's "slot calls for one instance are serialized by default").
type Instance struct {
	id     string
	domain string
	broker Broker

	mu          sync.RWMutex
	signals     map[string]*Signal
	slots       map[string]*Slot
	globalSlots map[string]*Slot
	waiters     map[string]*replyWaiter

	corr atomic.Uint64

	inbox    chan Delivery
	stopOnce sync.Once
	stop     chan struct{}
	stopped  chan struct{}

	unsubSlots  func()
	unsubGlobal func()
}

// NewInstance creates an Instance bound to id over broker. domain groups
// instances the way the original implementation's Karabo server id does
// (used only to namespace global-slot traffic when an AMQP broker is in
// play; see messaging/amqp).
func NewInstance(id, domain string, broker Broker) *Instance {
	return &Instance{
		id:          id,
		domain:      domain,
		broker:      broker,
		signals:     map[string]*Signal{},
		slots:       map[string]*Slot{},
		globalSlots: map[string]*Slot{},
		waiters:     map[string]*replyWaiter{},
		inbox:       make(chan Delivery, 256),
		stop:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// ID returns the instance's id.
func (inst *Instance) ID() string { return inst.id }

// RegisterSignal declares a signal this instance may emit.
func (inst *Instance) RegisterSignal(name string) *Signal {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	sig := &Signal{name: name, inst: inst}
	inst.signals[name] = sig

	return sig
}

// RegisterSlot declares a directly-addressed slot. expectedTypes may be
// nil to skip argument-type checking.
func (inst *Instance) RegisterSlot(name string, expectedTypes []hash.Tag, handler SlotHandler) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	inst.slots[name] = &Slot{Name: name, expectedTypes: expectedTypes, Handler: handler}
}

// RegisterGlobalSlot declares a broadcast slot, invoked for every message
// published on the global-slots exchange naming it (spec §4.5.3).
func (inst *Instance) RegisterGlobalSlot(name string, expectedTypes []hash.Tag, handler SlotHandler) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	inst.globalSlots[name] = &Slot{Name: name, expectedTypes: expectedTypes, Handler: handler}
}

// Start subscribes the instance to its direct and global slot traffic and
// launches its serialized delivery loop. Call Stop to tear both down.
func (inst *Instance) Start(ctx context.Context) error {
	slotsCh, unsubSlots, err := inst.broker.Subscribe(ctx, ExchangeSlots, RoutingKey(inst.id, WildcardKey))
	if err != nil {
		return fmt.Errorf("messaging: subscribing slots for %q: %w", inst.id, err)
	}

	globalCh, unsubGlobal, err := inst.broker.Subscribe(ctx, ExchangeGlobalSlots, WildcardKey)
	if err != nil {
		unsubSlots()
		return fmt.Errorf("messaging: subscribing global slots for %q: %w", inst.id, err)
	}

	inst.unsubSlots = unsubSlots
	inst.unsubGlobal = unsubGlobal

	go inst.pump(slotsCh, globalCh)
	go inst.dispatchLoop()

	return nil
}

// pump forwards both subscription channels into the single serialized
// inbox, so dispatchLoop never needs a select over a variable set of
// channels.
func (inst *Instance) pump(slotsCh, globalCh <-chan Delivery) {
	var g errgroup.Group

	forward := func(ch <-chan Delivery) func() error {
		return func() error {
			for d := range ch {
				select {
				case inst.inbox <- d:
				case <-inst.stop:
					return nil
				}
			}

			return nil
		}
	}

	g.Go(forward(slotsCh))
	g.Go(forward(globalCh))

	_ = g.Wait()
}

// dispatchLoop invokes one delivery's handler at a time, in arrival order.
func (inst *Instance) dispatchLoop() {
	defer close(inst.stopped)

	for {
		select {
		case d := <-inst.inbox:
			inst.handle(d)
		case <-inst.stop:
			return
		}
	}
}

// handle dispatches one delivery: a message naming this instance in
// slotFunctions is a direct call, one carrying target is a global-slot
// broadcast, and one with neither but a replyTo is a reply to a call this
// instance made (spec §6's header vocabulary disambiguates by presence,
// not by a dedicated message-kind field, matching the original wire
// format).
func (inst *Instance) handle(d Delivery) {
	env := d.Envelope
	fns := env.SlotFunctions()
	target, targetErr := env.Header.GetString(HeaderTarget)

	if len(fns) == 0 && targetErr != nil {
		if replyTo, err := env.Header.GetString(HeaderReplyTo); err == nil && replyTo != "" {
			inst.resolveReply(replyTo, env)
		}
		return
	}

	for _, fn := range fns {
		if fn[0] == inst.id {
			inst.invokeSlot(inst.slots, fn[1], env)
		}
	}

	if targetErr == nil && target != "" {
		inst.invokeSlot(inst.globalSlots, target, env)
	}
}

func (inst *Instance) invokeSlot(table map[string]*Slot, name string, env Envelope) {
	inst.mu.RLock()
	slot, ok := table[name]
	inst.mu.RUnlock()

	if !ok {
		return
	}

	reply, err := inst.runSlot(slot, env.Body)

	replyTo, replyErr := env.Header.GetString(HeaderReplyTo)
	callerID, callerErr := env.Header.GetString(HeaderSignalInstanceID)
	if replyErr != nil || callerErr != nil || replyTo == "" {
		return
	}

	out := NewEnvelope()
	_ = out.Header.Set(HeaderReplyTo, replyTo)
	_ = out.Header.Set(HeaderSignalInstanceID, inst.id)
	inst.stampNow(out.Header)

	if err != nil {
		_ = out.Header.Set("error", err.Error())
	} else if reply != nil {
		out.Body = reply
	}

	_ = inst.broker.Publish(context.Background(), ExchangeSlots, RoutingKey(callerID, replyFunction), out)
}

func (inst *Instance) runSlot(slot *Slot, args *hash.Hash) (reply *hash.Hash, err error) {
	if args == nil {
		args = hash.New()
	}

	if err := slot.checkArgs(args); err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("messaging: slot %q panicked: %v", slot.Name, rec)
		}
	}()

	return slot.Handler(args)
}

func (inst *Instance) resolveReply(correlationID string, env Envelope) {
	inst.mu.Lock()
	w, ok := inst.waiters[correlationID]
	if ok {
		delete(inst.waiters, correlationID)
	}
	inst.mu.Unlock()

	if !ok {
		return
	}

	msg, err := env.Header.GetString("error")
	if err != nil {
		w.future.Resolve(env.Body)
		return
	}

	if rest, found := strings.CutPrefix(msg, ErrArgumentMismatch.Error()); found {
		w.future.Reject(fmt.Errorf("%w%s", ErrArgumentMismatch, rest))
		return
	}

	w.future.Reject(fmt.Errorf("messaging: remote slot error: %s", msg))
}

// nextCorrelationID returns a correlation id unique within this instance's
// lifetime, used to match an async reply back to its caller.
func (inst *Instance) nextCorrelationID() string {
	return fmt.Sprintf("%s-%d", inst.id, inst.corr.Add(1))
}

// Call invokes a remote slot and awaits its reply, honoring ctx's
// deadline/cancellation (spec §4.5.2). A zero deadline on ctx falls back
// to a 15 second default, matching the original implementation's request
// timeout default.
func (inst *Instance) Call(ctx context.Context, targetInstanceID, slotName string, args *hash.Hash) (*hash.Hash, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}

	correlationID := inst.nextCorrelationID()
	future := NewFuture[*hash.Hash]()

	inst.mu.Lock()
	inst.waiters[correlationID] = &replyWaiter{future: future}
	inst.mu.Unlock()

	env := NewEnvelope()
	env.Body = args
	env.SetSlotFunctions([][2]string{{targetInstanceID, slotName}})
	_ = env.Header.Set(HeaderReplyTo, correlationID)
	_ = env.Header.Set(HeaderSignalInstanceID, inst.id)
	inst.stampNow(env.Header)

	if err := inst.broker.Publish(ctx, ExchangeSlots, RoutingKey(targetInstanceID, slotName), env); err != nil {
		inst.mu.Lock()
		delete(inst.waiters, correlationID)
		inst.mu.Unlock()

		return nil, err
	}

	reply, err := future.Await(ctx)
	if err != nil {
		inst.mu.Lock()
		delete(inst.waiters, correlationID)
		inst.mu.Unlock()
	}

	return reply, err
}

// Announce publishes body on the global-slots exchange under routing key
// event, with the target header set to event (spec §4.5.4's heartbeat/
// instanceNew/instanceGone notifications, and any other broadcast of the
// same shape).
func (inst *Instance) Announce(ctx context.Context, event string, body *hash.Hash) error {
	env := NewEnvelope()
	env.Body = body
	_ = env.Header.Set(HeaderTarget, event)
	inst.stampNow(env.Header)

	return inst.broker.Publish(ctx, ExchangeGlobalSlots, event, env)
}

func (inst *Instance) stampNow(h *hash.Hash) {
	now := time.Now()
	stampTimestamp(h, now.Unix(), int64(now.Nanosecond())*1e9)
}

// Stop unsubscribes from the broker and drains the delivery loop. Any
// calls still awaiting a reply fail with [ErrBrokerDisconnected].
func (inst *Instance) Stop() {
	inst.stopOnce.Do(func() {
		close(inst.stop)

		if inst.unsubSlots != nil {
			inst.unsubSlots()
		}
		if inst.unsubGlobal != nil {
			inst.unsubGlobal()
		}

		<-inst.stopped

		inst.mu.Lock()
		for id, w := range inst.waiters {
			w.future.Reject(ErrBrokerDisconnected)
			delete(inst.waiters, id)
		}
		inst.mu.Unlock()
	})
}
