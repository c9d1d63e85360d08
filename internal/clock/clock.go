package clock

import "time"

// All streak and cache math works on calendar days in a single reference
// timezone. Mixing server-local days with user-local days would make the
// freeze window drift, so everything funnels through this package.
var Location = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		// UTC+7, no DST
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

func Now() time.Time {
	return time.Now().In(Location)
}

// Today returns midnight of the current day in the reference timezone.
func Today() time.Time {
	return DateOf(Now())
}

// DateOf truncates a timestamp to its calendar day in the reference timezone.
func DateOf(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

// DayKey formats a date as YYYY-MM-DD, the namespace used for daily cache keys.
func DayKey(t time.Time) string {
	return DateOf(t).Format("2006-01-02")
}

// WeekStart returns the Monday 00:00 of the week containing t.
// Freeze quotas are tracked per Monday-aligned week.
func WeekStart(t time.Time) time.Time {
	d := DateOf(t)
	// time.Weekday has Sunday=0; shift so Monday=0
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// DaysBetween returns the absolute number of calendar days between a and b.
// Both are truncated to their day first, so DST shifts can't skew the count.
func DaysBetween(a, b time.Time) int {
	da := DateOf(a)
	db := DateOf(b)
	if da.After(db) {
		da, db = db, da
	}
	days := 0
	for da.Before(db) {
		da = da.AddDate(0, 0, 1)
		days++
	}
	return days
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
