// Package model contains the in-memory representation of a simulation: the
// process control block, the program it runs, and the simulation descriptor
// produced from a configuration file.
//
// The types are shared by the loader, the scheduler and the executor; none of
// them carries behaviour beyond simple accessors.
package model
