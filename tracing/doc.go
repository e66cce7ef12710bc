// Package tracing integrates OpenTelemetry with the simulator.  A span covers
// a whole simulation run and one child span covers each process from
// admission to retirement.  Without Init every span is a no-op.
package tracing
