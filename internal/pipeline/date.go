package pipeline

import "time"

const (
	minDayKey = -1 << 31
	maxDayKey = 1<<31 - 1
)

// DayKey maps t to an ordered yyyymmdd integer using t's own calendar fields.
// Callers are expected to hand in values already expressed in the practice's
// location; no conversion happens here.
func DayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DateIn re-anchors the calendar date of t at midnight in loc, keeping the
// year, month and day exactly as written. A DATE column scanned as UTC midnight
// stays on the same day no matter how far loc is from UTC.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}

	if loc == nil {
		loc = time.Local
	}

	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// WeekBounds returns the Monday and Sunday of the week containing day.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	offset := (int(day.Weekday()) + 6) % 7
	start := time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, day.Location())

	return start, start.AddDate(0, 0, 6)
}

// MonthBounds returns the first and last day of the month containing day.
func MonthBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 1, -1)
}
