// Package idgen issues the opaque identifiers of simulation runs and event
// messages.  Callers must not parse them.
package idgen
