// Package registry provides the namespace tree that native extensions are
// registered into.
//
// A tree starts at a root Node created with NewRoot. Extension modules call
// DeclareNamespace to get-or-create a nested path such as
// ["Servactory", "HelloRust"], then BindFunction to attach Go callables to the
// resulting node under a host-visible name and a fixed arity. SetConstant
// attaches plain values that share the member table with child namespaces.
//
// Every registration defect is reported as a *Error that unwraps to one of the
// package sentinels (ErrNamespaceConflict, ErrDuplicateBinding,
// ErrArityMismatch, ...), so callers can match on the kind with errors.Is and
// still print the offending path and name.
//
// The tree is built single-threaded and then sealed with Seal. Once sealed it
// is never mutated again, so concurrent readers need no locking.
package registry
