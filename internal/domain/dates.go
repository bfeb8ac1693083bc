package domain

import "time"

// DateKeyLayout is the canonical calendar-date key format. Keys compare
// chronologically as strings.
const DateKeyLayout = "2006-01-02"

// DateKey buckets an instant into a calendar-date key using the user's
// reference timezone. All "today" decisions flow through this.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// DayBounds returns the half-open interval [start, end) covering the given
// date key in the reference timezone. DST transitions are handled by civil
// date arithmetic rather than adding 24 hours.
func DayBounds(dateKey string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DateKeyLayout, dateKey, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// PreviousDateKey returns the calendar day before the given key. Invalid
// keys return "".
func PreviousDateKey(dateKey string) string {
	d, err := time.Parse(DateKeyLayout, dateKey)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, -1).Format(DateKeyLayout)
}
