package configurator

import (
	"fmt"
	"time"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/schema"
	"go.karabo.dev/control/validator"
)

// creationRules is the access mode a configuration-time validation pass
// checks against: init-time writes and ordinary writes are both legal
// while constructing an instance, as is reading back what was supplied.
var creationRules = schema.AssemblyRules{
	AccessMode:  schema.AccessInit | schema.AccessWrite | schema.AccessRead,
	AccessLevel: schema.AccessLevelAdmin,
}

// Create looks up classID's constructor and, if validate, validates config
// against GetSchema(classID) under the default (non-strict, default-
// injecting) rules before invoking the constructor with the validated map.
// extra, if given, is passed through to a constructor registered via
// [Registry.RegisterClassWithExtra]; it is an error to supply extra when
// only a plain constructor is registered, or vice versa. A constructor
// error or panic is reported as [ErrParameter]; any other lookup failure
// is [ErrLogic].
func (r *Registry) Create(classID string, config *hash.Hash, validate bool, extra ...any) (inst any, err error) {
	reg, ok := r.lookup(classID)
	if !ok {
		return nil, fmt.Errorf("%w: unregistered class %q", ErrLogic, classID)
	}

	validated := config

	if validate {
		s, err := r.GetSchema(classID, &creationRules)
		if err != nil {
			return nil, err
		}

		accepted, diag, out := validator.Validate(s, config, validator.Rules{
			AllowUnrootedConfiguration: true,
			InjectDefaults:             true,
			InjectTimestamps:           true,
		}, time.Now())
		if !accepted {
			return nil, fmt.Errorf("%w: %s", ErrParameter, diag)
		}

		validated = out
	}

	defer func() {
		if rec := recover(); rec != nil {
			inst, err = nil, fmt.Errorf("%w: constructor for %q panicked: %v", ErrParameter, classID, rec)
		}
	}()

	switch {
	case len(extra) > 0:
		if reg.extraCtor == nil {
			return nil, fmt.Errorf("%w: %q has no extra-argument constructor", ErrLogic, classID)
		}

		inst, err = reg.extraCtor(validated, extra[0])
	case reg.ctor != nil:
		inst, err = reg.ctor(validated)
	default:
		return nil, fmt.Errorf("%w: %q has no plain constructor", ErrLogic, classID)
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParameter, err)
	}

	return inst, err
}

// CreateFromConfig is the single-argument creation form: config must be a
// rooted map with exactly one top-level key naming the class to build.
func (r *Registry) CreateFromConfig(config *hash.Hash, validate bool) (any, error) {
	keys := config.Keys()
	if len(keys) != 1 {
		return nil, fmt.Errorf("%w: expected a single root key naming a class, found %d", ErrLogic, len(keys))
	}

	classID := keys[0]

	v, _ := config.Find(classID)

	child, isHash := v.AsHash()
	if !isHash {
		return nil, fmt.Errorf("%w: root value of %q is not a map", ErrLogic, classID)
	}

	return r.Create(classID, child, validate)
}

// CreateNode builds the instance named by the classId attribute of s's
// node at path, using config as that instance's configuration.
func (r *Registry) CreateNode(s *schema.Schema, path string, config *hash.Hash, validate bool) (any, error) {
	classID, ok := s.ClassID(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q names no classId", ErrLogic, path)
	}

	return r.Create(classID, config, validate)
}

// CreateChoice builds an instance for a "choice of nodes" element at path:
// config must carry exactly one key, naming which of path's declared
// child classes to instantiate.
func (r *Registry) CreateChoice(s *schema.Schema, path string, config *hash.Hash, validate bool) (any, error) {
	keys := config.Keys()
	if len(keys) != 1 {
		return nil, fmt.Errorf("%w: choice at %q requires exactly one key, found %d", ErrLogic, path, len(keys))
	}

	choice := keys[0]

	sep := s.Tree().Separator()
	childPath := path + string(sep) + choice

	classID, ok := s.ClassID(childPath)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a known choice at %q", ErrLogic, choice, path)
	}

	v, _ := config.Find(choice)

	child, isHash := v.AsHash()
	if !isHash {
		return nil, fmt.Errorf("%w: choice value for %q is not a map", ErrLogic, choice)
	}

	return r.Create(classID, child, validate)
}

// CreateList builds one instance per element of configs, each validated as
// an independent choice at path (spec §4.4's createList helper).
func (r *Registry) CreateList(s *schema.Schema, path string, configs []*hash.Hash, validate bool) ([]any, error) {
	out := make([]any, len(configs))

	for i, cfg := range configs {
		inst, err := r.CreateChoice(s, path, cfg, validate)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}

		out[i] = inst
	}

	return out, nil
}
