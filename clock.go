package profz

import (
	"time"

	"github.com/zoobzio/clockz"
)

// defaultClock is used when no clock is injected.
var defaultClock clockz.Clock = clockz.RealClock

// toMicros converts a duration to the trace time scale: fractional microseconds.
func toMicros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

// sinceEpoch expresses an instant relative to the process epoch.
// Instants before the epoch clamp to zero.
func sinceEpoch(epoch, t time.Time) float64 {
	d := t.Sub(epoch)
	if d < 0 {
		return 0
	}
	return toMicros(d)
}
