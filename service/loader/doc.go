// Package loader admits the configured processes into the ready queue once
// the virtual clock reaches their start tick.  The loader is a barrier
// participant like every CPU, so admissions happen in lockstep with execution.
package loader
