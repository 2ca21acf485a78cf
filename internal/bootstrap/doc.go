// Package bootstrap runs the registration program of a native extension.
//
// A Sequencer owns an ordered list of Modules. Initialize creates a fresh
// namespace root, lets every module register its namespaces, functions and
// constants in order, and stops at the first failure. On success the tree is
// sealed and handed out as a *Handle; on failure the partial tree is dropped
// and an *InitError describes which module failed and why.
//
// The state machine is Uninitialized -> Initializing -> {Ready, Failed}.
// Both terminal states are cached: calling Initialize again returns the same
// handle or the same error. There is no way back to Uninitialized.
package bootstrap
