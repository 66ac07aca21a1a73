package domain

import "time"

// DateLayout renders civil dates in reports.
const DateLayout = "2006-01-02"

// CivilDate returns the calendar day t falls on in loc, as midnight UTC.
// All day arithmetic in this package works on such values.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns [start, end) instants of the month beginning at first,
// interpreted in loc. Used to turn a month token into a query range.
func MonthBounds(first time.Time, loc *time.Location) (start, end time.Time) {
	start = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
