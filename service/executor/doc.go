// Package executor runs one program instruction per tick on behalf of a
// scheduling worker.  alloc and free reach the shared heap allocator; calc,
// read and write only advance the program counter.
package executor
