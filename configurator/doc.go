// Package configurator binds class identifiers to constructors and to
// schema-description functions, and produces instances on demand (§4.4).
//
// registerClass installs a constructor keyed by (classId, signature);
// registerSchemaFunction appends a class's expected-parameters function to
// the chain invoked, base-first, when the class's schema is assembled.
// Create validates a configuration map against that schema and invokes the
// constructor with the validated result.
//
// It is grounded on the teacher's [magicschema/config.go] Config.Registry
// map[string]func() Annotator pattern: a registration table keyed by
// string id, built on demand from accumulated constructors.
package configurator
