// Package dag provides a small directed acyclic graph used to order code
// generation stages. Edges point from a dependency to its dependent, and
// TopologicalOrder yields a reproducible order: among nodes that are ready at
// the same time, the one added first comes first.
package dag
