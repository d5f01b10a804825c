package domain

import "time"

// Clock supplies the current time. Injectable so window math and display
// formatting never read the host wall clock directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock, always UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// TimeWindow is a derived start/end range in epoch millis.
type TimeWindow struct {
	Start int64
	End   int64
}

// ComputeWindow derives the padded chart window around an alert event.
// Start is the trigger time minus padding. End is the return-to-normal
// time plus padding when the event has resolved (rtnMillis > 0); for a
// still-active event the window extends to now plus padding. Pure and
// total: no error conditions and no clamping, so a record whose
// return-to-normal predates its trigger yields exactly what the formula
// says.
func ComputeWindow(triggerMillis, rtnMillis int64, now time.Time, padding time.Duration) TimeWindow {
	pad := padding.Milliseconds()
	end := rtnMillis
	if end <= 0 {
		end = now.UnixMilli()
	}
	return TimeWindow{
		Start: triggerMillis - pad,
		End:   end + pad,
	}
}
