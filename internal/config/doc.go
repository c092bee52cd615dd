// Package config defines the format-agnostic configuration model for the
// generator, along with the Loader interface implemented by the HCL and YAML
// front ends.
//
// The `config.Model` is the single source of truth for the `engine`
// package. Every attribute carries the source range it was read from so that
// validation failures can be reported against the user's file.
package config
