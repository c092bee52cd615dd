// Package registry provides the central "glue" for the module system.
//
// The Registry maps the names used in configuration files (a component
// domain such as "globals", an action such as "globals.set") to the schema
// that validates them and the Go function that emits their code. Modules
// register themselves at startup; the registry is then validated so that a
// broken module is caught before any user configuration is read.
package registry
