// Package progress tracks how far a simulation run has come: how many of the
// admitted processes have finished and whether the loader has run out of work.
// Scheduling workers consult the tracker to decide when to stop.
package progress
