// Package allocator implements the simulated kernel heap: a fixed size arena
// carved into address-ordered blocks, first-fit allocation with right split,
// and forward-only coalescing on free.  Blocks are addressed by integer
// offsets rather than raw pointers.
package allocator
