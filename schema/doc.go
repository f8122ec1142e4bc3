// Package schema implements the schema tree of spec §3.4 and §4.2: an
// attributed map (built on [hash.Hash]) describing what a configuration
// map should look like and what it means. Every schema node carries a
// fixed vocabulary of attributes — nodeType, valueType, accessMode,
// bounds, allowed states, and so on — set through functional options
// passed to [Schema.AddLeaf] and [Schema.AddNode], mirroring the option
// pattern used throughout this module (see internal/xlog.Config,
// hash.Option).
//
// Package configurator builds a Schema per registered class by invoking
// a chain of builder functions against one Schema instance. Package
// validator consumes a Schema to accept or reject a candidate [hash.Hash].
package schema
