package domain

import "time"

// MonthPhase places a month relative to today.
type MonthPhase int

const (
	PhasePast MonthPhase = iota
	PhaseCurrent
	PhaseFuture
)

func (p MonthPhase) String() string {
	switch p {
	case PhasePast:
		return "past"
	case PhaseCurrent:
		return "current"
	case PhaseFuture:
		return "future"
	default:
		return "unknown"
	}
}

// MonthWindow is the elapsed-days window of one month as seen from today.
// Entry dates after Cutoff do not count as elapsed working days.
type MonthWindow struct {
	First  time.Time
	Last   time.Time
	Phase  MonthPhase
	Cutoff time.Time
}

// WindowFor builds the window for the month starting at first. Both first and
// today are civil dates.
//
//	past    -> cutoff is the month's last day
//	current -> cutoff is today
//	future  -> cutoff is the day before the month starts, so nothing counts
func WindowFor(first, today time.Time) MonthWindow {
	first = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	w := MonthWindow{
		First: first,
		Last:  first.AddDate(0, 1, -1),
	}

	todayMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	switch {
	case first.Before(todayMonth):
		w.Phase = PhasePast
	case first.Equal(todayMonth):
		w.Phase = PhaseCurrent
	default:
		w.Phase = PhaseFuture
	}

	switch w.Phase {
	case PhasePast:
		w.Cutoff = w.Last
	case PhaseCurrent:
		w.Cutoff = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	case PhaseFuture:
		w.Cutoff = first.AddDate(0, 0, -1)
	}
	return w
}

// Contains reports whether the civil date d lies inside the month.
func (w MonthWindow) Contains(d time.Time) bool {
	return !d.Before(w.First) && !d.After(w.Last)
}

// Elapsed counts the distinct dates that are in the month and on or before the cutoff.
func (w MonthWindow) Elapsed(dates []time.Time) int {
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		if w.Contains(d) && !d.After(w.Cutoff) {
			seen[d] = struct{}{}
		}
	}
	return len(seen)
}
