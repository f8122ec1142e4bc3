package validator

import "errors"

// ErrRejected prefixes the diagnostic [Validate] returns when the input
// lacks the single root key the schema's root name requires. [Validate]
// reports every failure through its accepted result and diagnostic string,
// not an error value, and per-path diagnostics do not carry this prefix.
var ErrRejected = errors.New("validator: rejected")
