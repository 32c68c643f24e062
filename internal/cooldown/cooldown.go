// Package cooldown decides whether an account may mine again.
package cooldown

import "time"

// Verdict is the result of a cooldown evaluation. Remaining is exact and
// clamped at zero; formatting it for humans is the caller's job.
type Verdict struct {
	Eligible      bool
	NextAvailable time.Time
	Remaining     time.Duration
}

// Evaluate computes the next-available time as lastMine plus the land delay
// plus the sum of tool delays, all in seconds. An account is eligible the
// moment now reaches next-available (inclusive).
func Evaluate(now, lastMine time.Time, landDelay float64, toolDelays []float64) Verdict {
	total := landDelay
	for _, d := range toolDelays {
		total += d
	}

	next := lastMine.Add(time.Duration(total * float64(time.Second)))
	v := Verdict{
		Eligible:      !now.Before(next),
		NextAvailable: next,
	}
	if !v.Eligible {
		v.Remaining = next.Sub(now)
	}
	return v
}
