// Package literal maps [hash.Tag] values to their on-wire short tokens
// and back (spec §3.3: "a literal-name mapping between variants and short
// tokens exists and is the sole on-wire type discriminator"). Package
// hash/wire uses it for the binary envelope codec; configuration file
// loaders and the rate monitor use it for human-readable type names.
package literal
