/*
Package stageid provides a structured representation for the identifiers of
generation stages, based on the canonical format `kind.path`.

The format is a dot-separated sequence of segments. The first segment is the
stage kind:

	core
	component.globals.counter
	automation.on_boot

When two blocks would get the same address, later ones carry an index,
e.g. `component.globals.counter[2]`, so every stage stays addressable even
while the symbol table reports the duplicate id.
*/
package stageid
