// Package codegen models the C++ code the generator emits.
//
// Expressions are plain values that render themselves as C++ source. A
// Program accumulates global declarations and setup() statements while the
// engine runs its stages, and renders the final main.cpp through a
// text/template. The Program owns the symbol table, so declaring a variable
// and emitting its declaration are a single step (Pvariable).
package codegen
