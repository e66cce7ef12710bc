// Package schedsim simulates a tick driven multiprocessor scheduler.
//
// A simulation file names the time slot, the CPU count and the processes to
// admit.  A loader admits each process at its start tick into a priority
// ready queue; every CPU runs a scheduling loop that dispatches, preempts and
// retires processes in lockstep on a shared timer barrier.  Programs allocate
// and free memory from a first fit heap whose statistics are written when the
// run completes.
//
//	srv, err := schedsim.New(schedsim.WithConfig(schedsim.DefaultConfig()))
//	sim, err := srv.LoadSimulation(ctx, "input/sched_0")
//	report, err := srv.Runtime().Run(ctx, sim)
//
// The sub-packages hold the building blocks: service/timer (barrier),
// service/queue (ready queue), service/processor (CPU loops),
// service/loader, progress (termination detection) and service/allocator.
package schedsim
