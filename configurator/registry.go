package configurator

import (
	"fmt"
	"log/slog"
	"sync"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
)

// Constructor builds an instance of a registered class from its validated
// configuration map.
type Constructor func(cfg *hash.Hash) (any, error)

// ExtraConstructor is a [Constructor] variant accepting one additional,
// caller-supplied argument beyond the configuration map (e.g. a parent
// device handle), per spec §4.4's "that plus one extra typed argument".
type ExtraConstructor func(cfg *hash.Hash, extra any) (any, error)

// SchemaFunc appends a class's own declarations onto a schema under
// construction. registerSchemaFunction accumulates these in inheritance
// order: base class first, derived class last, so a derived function may
// override or extend what a base function already declared.
type SchemaFunc func(s *schema.Schema) error

type registration struct {
	ctor      Constructor
	extraCtor ExtraConstructor
}

// Registry binds class identifiers to constructors and schema-description
// functions, and builds instances on demand. It is grounded on the
// teacher's Config.Registry map[string]func() Annotator pattern,
// generalized from one constructor per annotator to one constructor (plus
// an accumulated schema-function chain) per class id.
//
// The zero Registry is unusable; construct with [New]. A process normally
// keeps a single Registry, populated explicitly at program start (e.g. from
// main) via [Registry.RegisterClass]/[Registry.RegisterSchemaFunction].
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]registration
	schemaFuncs  map[string][]SchemaFunc
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		constructors: map[string]registration{},
		schemaFuncs:  map[string][]SchemaFunc{},
	}
}

// RegisterClass installs ctor as the plain (config-map-only) constructor
// for classID. Re-registration is logged as a warning, not a hard
// failure, to accommodate duplicate dynamic loading of the same
// definition (spec §4.4).
func (r *Registry) RegisterClass(classID string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.constructors[classID]; ok && existing.ctor != nil {
		slog.Warn("configurator: re-registering class constructor", "classId", classID)
	}

	reg := r.constructors[classID]
	reg.ctor = ctor
	r.constructors[classID] = reg
}

// RegisterClassWithExtra installs ctor as the extra-argument constructor
// for classID, keyed separately from the plain form (spec §4.4's
// "constructorSignatureKey derived from the constructor's parameter
// types").
func (r *Registry) RegisterClassWithExtra(classID string, ctor ExtraConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.constructors[classID]; ok && existing.extraCtor != nil {
		slog.Warn("configurator: re-registering class extra-constructor", "classId", classID)
	}

	reg := r.constructors[classID]
	reg.extraCtor = ctor
	r.constructors[classID] = reg
}

// RegisterSchemaFunction appends fn to classID's schema-function chain.
// Functions accumulate in registration order; callers register base
// classes before derived ones so a derived fn may override or append to
// base declarations (spec §4.4).
func (r *Registry) RegisterSchemaFunction(classID string, fn SchemaFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemaFuncs[classID] = append(r.schemaFuncs[classID], fn)
}

// GetSchema builds a fresh schema rooted at classID by invoking every
// registered schema function for it in order on the same schema object,
// then applies rules as a projection if non-nil.
func (r *Registry) GetSchema(classID string, rules *schema.AssemblyRules) (*schema.Schema, error) {
	r.mu.RLock()
	fns := append([]SchemaFunc(nil), r.schemaFuncs[classID]...)
	r.mu.RUnlock()

	s := schema.New(classID)

	for _, fn := range fns {
		if err := fn(s); err != nil {
			return nil, fmt.Errorf("configurator: building schema for %q: %w", classID, err)
		}
	}

	if rules == nil {
		return s, nil
	}

	return s.SubSchemaByRules(*rules), nil
}

func (r *Registry) lookup(classID string) (registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.constructors[classID]

	return reg, ok
}
