package domain

import "time"

// ImportWindow is a [Start, End) date range used to page through a windowed
// upstream list endpoint.
type ImportWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w ImportWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Windows partitions [start, now) into contiguous, non-overlapping windows of
// at most width each. The final window is clamped to now. The sequence is
// recomputed from the same fixed start on every run; resumability comes from
// idempotent reconciliation, not persisted cursor state.
//
// Returns nil when start is not strictly before now or width is not positive.
func Windows(start, now time.Time, width time.Duration) []ImportWindow {
	if width <= 0 || !start.Before(now) {
		return nil
	}

	var windows []ImportWindow
	for cur := start; cur.Before(now); cur = cur.Add(width) {
		end := cur.Add(width)
		if end.After(now) {
			end = now
		}
		windows = append(windows, ImportWindow{Start: cur, End: end})
	}
	return windows
}
