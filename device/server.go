// Package device provides the generic server harness every
// cmd/device-server process runs: a schema-validated configuration held
// behind a [messaging.Instance], reconfigured and read back over the
// signal/slot fabric, with a stateChanged signal after each accepted
// reconfigure and periodic heartbeats.
// It deliberately carries no device-specific control logic (spec.md §1's
// "concrete device logic" is an explicit non-goal); a real device
// specializes Server by registering its own slots and a richer schema.
package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/messaging"
	"go.karabo.dev/control/schema"
	"go.karabo.dev/control/validator"
)

// Slot names the generic harness exposes on every device instance.
const (
	SlotReconfigure      = "reconfigure"
	SlotGetConfiguration = "getConfiguration"
	SlotKill             = "kill"
)

// Server is the generic, schema-driven configuration holder and
// messaging participant a device-server process wraps. Create with
// [NewServer]; call [Server.Run] to start serving.
type Server struct {
	inst   *messaging.Instance
	schema *schema.Schema

	mu     sync.RWMutex
	config *hash.Hash

	heartbeatInterval time.Duration
	stateChanged      *messaging.Signal

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewServer validates initial against configSchema and returns a Server
// ready to register on inst. heartbeatInterval less than 1 uses a 5
// second default, matching spec §4.5.4's "a few seconds."
func NewServer(inst *messaging.Instance, configSchema *schema.Schema, initial *hash.Hash, heartbeatInterval time.Duration) (*Server, error) {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 5 * time.Second
	}

	accepted, diag, out := validator.Validate(configSchema, initial, validator.Rules{
		InjectDefaults:             true,
		AllowUnrootedConfiguration: true,
		InjectTimestamps:           true,
	}, time.Now())
	if !accepted {
		return nil, fmt.Errorf("device: initial configuration rejected: %s", diag)
	}

	s := &Server{
		inst:              inst,
		schema:            configSchema,
		config:            out,
		heartbeatInterval: heartbeatInterval,
		stopped:           make(chan struct{}),
	}

	s.registerSlots()

	return s, nil
}

func (s *Server) registerSlots() {
	s.inst.RegisterSlot(SlotGetConfiguration, nil, func(_ *hash.Hash) (*hash.Hash, error) {
		return s.Configuration(), nil
	})

	s.inst.RegisterSlot(SlotReconfigure, []hash.Tag{hash.TagHash}, func(args *hash.Hash) (*hash.Hash, error) {
		update, err := args.GetHash("a1")
		if err != nil {
			return nil, err
		}

		if err := s.Reconfigure(update); err != nil {
			return nil, err
		}

		return s.Configuration(), nil
	})

	s.inst.RegisterSlot(SlotKill, nil, func(_ *hash.Hash) (*hash.Hash, error) {
		go s.Stop()
		return nil, nil
	})

	s.stateChanged = s.inst.RegisterSignal("stateChanged")
}

// Configuration returns a deep copy of the current configuration, safe
// for the caller to mutate.
func (s *Server) Configuration() *hash.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone, err := s.config.DeepCopy()
	if err != nil {
		return s.config.Clone()
	}

	return clone
}

// Reconfigure validates update, unrooted, against the server's whole
// schema with missing keys allowed (a reconfigure carries only the changed
// leaves, not the whole tree) and
// merges the result into the current configuration.
func (s *Server) Reconfigure(update *hash.Hash) error {
	accepted, diag, out := validator.Validate(s.schema, update, validator.Rules{
		AllowUnrootedConfiguration: true,
		AllowMissingKeys:           true,
		InjectTimestamps:           true,
	}, time.Now())
	if !accepted {
		return fmt.Errorf("device: reconfigure rejected: %s", diag)
	}

	s.mu.Lock()
	err := s.config.Merge(out, hash.ReplaceAttributes, nil)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("device: merging reconfigure: %w", err)
	}

	if s.stateChanged != nil {
		_ = s.stateChanged.Emit(context.Background(), s.Configuration())
	}

	return nil
}

// Run starts the instance, announces instanceNew, heartbeats on
// heartbeatInterval, and blocks until ctx is done or Stop is called, at
// which point it announces instanceGone and stops the instance.
func (s *Server) Run(ctx context.Context) error {
	if err := s.inst.Start(ctx); err != nil {
		return fmt.Errorf("device: starting instance: %w", err)
	}
	defer s.inst.Stop()

	s.announce(ctx, messaging.EventInstanceNew)
	defer s.announce(context.Background(), messaging.EventInstanceGone)

	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.announce(ctx, messaging.EventHeartbeat)
		case <-ctx.Done():
			return nil
		case <-s.stopped:
			return nil
		}
	}
}

func (s *Server) announce(ctx context.Context, event string) {
	body := hash.New()
	_ = body.Set("instanceId", s.inst.ID())

	_ = s.inst.Announce(ctx, event, body)
}

// Stop ends Run's loop without waiting for ctx to be cancelled, used by
// the kill slot.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopped) })
}
