package internal

import "time"

// DayStart truncates t to midnight in loc. All calendar-day bucketing goes
// through here so every backend agrees on what "today" means.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
