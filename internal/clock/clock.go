// Package clock supplies the wall-clock time stamped on event messages.  The
// simulated time lives in service/timer; this clock never drives scheduling.
package clock

import "time"

// NowFunc is replaced in tests that compare message timestamps
var NowFunc = time.Now

// Now returns the current wall-clock time
func Now() time.Time { return NowFunc() }
