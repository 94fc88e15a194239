package autoapply

import "time"

// WeekStart returns Monday 00:00:00 UTC of the week containing now. The
// weekly application cap counts queued actions from this instant onward.
func WeekStart(now time.Time) time.Time {
	utc := now.UTC()
	daysSinceMonday := (int(utc.Weekday()) + 6) % 7
	monday := utc.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}
