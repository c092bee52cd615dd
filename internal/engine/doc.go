// Package engine drives one generation pass over a loaded configuration.
//
// A pass runs in three phases:
//
//  1. Validate: every component block and automation is validated against
//     its registered schema. All problems are collected and returned together.
//  2. Plan: a stage graph is built. The "core" stage sets up the namespace and
//     includes; every component and automation is a stage depending on core and
//     on the stages that declare the ids it references.
//  3. Emit: stages run one at a time in deterministic topological order, with
//     ties broken by declaration order.
package engine
