package timer

// Option configures a Barrier
type Option func(b *Barrier)

// WithTickListener registers a callback invoked with the tick value at Start
// and after every completed tick.  Listeners run on the goroutine that
// completes the tick and must not call back into the barrier.
func WithTickListener(fn func(tick uint64)) Option {
	return func(b *Barrier) {
		if fn != nil {
			b.listeners = append(b.listeners, fn)
		}
	}
}
