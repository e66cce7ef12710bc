// Package policy selects how the ready queue orders processes and where a
// process priority comes from.  A policy is chosen by name from the engine
// configuration; the default keeps the priority declared in the program header.
package policy
