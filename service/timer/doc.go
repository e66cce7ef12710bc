// Package timer implements the virtual clock shared by all simulated CPUs and
// the loader.  The clock is a multi-party barrier: the tick advances exactly
// once after every registered participant has asked to advance.
//
// A participant that stops calling Advance without calling Unregister blocks
// every peer forever; leaving the simulation must always go through
// Unregister.
package timer
