// Package expr implements the sandboxed expression language used for
// matching and mutating object definitions.
//
// Expressions are compiled once into an immutable syntax tree and can be
// evaluated repeatedly against different binding environments. The grammar
// is a small Python-flavored subset: arithmetic, comparison, boolean logic,
// membership tests, name lookups and function calls. The only side effects
// permitted anywhere in the language are the two mutation forms, plain
// assignment and augmented add/subtract, and those are honored exclusively
// through EvalUpdate against a MutableEnv.
//
// Extensibility is confined to the operator and function tables. The
// interpreter core is a closed set of node kinds; new behavior is added by
// constructing a table (see DefaultOperators and DefaultFunctions) and
// passing it to CompileWith, never by adding node types.
package expr
