// Package analytics derives dashboard aggregates from a job snapshot.
//
// Every function here is pure: it reads the jobs it is given, takes the
// current instant from the caller, and returns freshly allocated results.
// Malformed input never causes an error; missing timestamps exclude a job
// from time-dependent aggregates and negative durations are floored at zero.
package analytics

import "time"

// clampedSeconds returns end-start in seconds, floored at zero.
// The second return value reports whether flooring happened.
func clampedSeconds(start, end time.Time) (float64, bool) {
	d := end.Sub(start)
	if d < 0 {
		return 0, true
	}
	return d.Seconds(), false
}

// startOfDay returns local midnight of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// inWindow reports whether t lies in the half-open interval [start, end).
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
