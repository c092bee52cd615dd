// Package schema declares the accepted shape of configuration blocks and
// validates user input against it.
//
// A Schema is an ordered set of typed fields. Schemas compose by explicit
// set-union (Extend); declaring the same key twice is a composition error
// detected when the schema is built, never while validating user input.
// Validation is strict: unknown keys, missing required keys and values of the
// wrong shape are all reported, together, as a ValidationErrors value.
package schema
