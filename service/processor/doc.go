// Package processor hosts the simulated CPUs.  Every CPU is a worker
// goroutine that dispatches, runs, preempts and retires processes taken from
// the shared ready queue, advancing the virtual clock once per iteration.
package processor
