// Package symbols implements the generator's symbol table: the append-only
// mapping from configuration identifiers to emitted C++ variables.
package symbols

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
)

// Variable is one emitted variable: a pointer to an object of Type.
type Variable struct {
	Name string
	// Class is the qualified name of the object's class without template
	// arguments, e.g. "globals::GlobalsComponent".
	Class string
	// Type is the fully resolved C++ type, e.g. "globals::GlobalsComponent<int>".
	Type  string
	Range hcl.Range
}

// DuplicateIdentifierError is returned when an identifier is declared twice.
type DuplicateIdentifierError struct {
	ID       string
	First    hcl.Range
	Conflict hcl.Range
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("id %q is declared more than once (first at %s, again at %s)", e.ID, e.First, e.Conflict)
}

// UnresolvedReferenceError is returned when an identifier cannot be found.
type UnresolvedReferenceError struct {
	ID    string
	Range hcl.Range
	// Known holds the declared identifiers, to help the user spot typos.
	Known []string
}

func (e *UnresolvedReferenceError) Error() string {
	msg := fmt.Sprintf("%s: couldn't find id %q", e.Range, e.ID)
	if len(e.Known) > 0 {
		msg += fmt.Sprintf(" (declared ids: %v)", e.Known)
	}
	return msg
}

// Table is an append-only symbol table. It is used by a single generation
// pass and is not safe for concurrent writers.
type Table struct {
	vars  map[string]*Variable
	order []string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{vars: make(map[string]*Variable)}
}

// Declare records a new variable. Declaring an existing name fails with a
// DuplicateIdentifierError and leaves the table unchanged.
func (t *Table) Declare(v *Variable) (*Variable, error) {
	if prev, ok := t.vars[v.Name]; ok {
		return nil, &DuplicateIdentifierError{ID: v.Name, First: prev.Range, Conflict: v.Range}
	}
	t.vars[v.Name] = v
	t.order = append(t.order, v.Name)
	return v, nil
}

// Lookup resolves name, failing with an UnresolvedReferenceError.
func (t *Table) Lookup(name string, rng hcl.Range) (*Variable, error) {
	if v, ok := t.vars[name]; ok {
		return v, nil
	}
	known := append([]string(nil), t.order...)
	sort.Strings(known)
	return nil, &UnresolvedReferenceError{ID: name, Range: rng, Known: known}
}

// Has reports whether name is declared.
func (t *Table) Has(name string) bool {
	_, ok := t.vars[name]
	return ok
}

// FreshName returns an unused name derived from base: base, base_2, base_3...
// The name is not reserved until it is declared.
func (t *Table) FreshName(base string) string {
	if !t.Has(base) {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if !t.Has(name) {
			return name
		}
	}
}

// Variables returns all variables in declaration order.
func (t *Table) Variables() []*Variable {
	out := make([]*Variable, len(t.order))
	for i, name := range t.order {
		out[i] = t.vars[name]
	}
	return out
}
