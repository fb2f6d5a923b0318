package timehelper

import "time"

const dateLayout = "2006-01-02"

func GetTodaysDateString() string {
	// Get the current date
	currentTime := time.Now()

	// Format the date to 'YYYY-MM-DD'
	return currentTime.Format(dateLayout)
}

// ParseDate parses a 'YYYY-MM-DD' string. The zero time is returned for
// unparseable input so callers can fall back to today.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DatesBetween lists every date from start to end inclusive whose weekday is
// in allowedDays (empty means every day), capped at one year.
func DatesBetween(start, end time.Time, allowedDays []time.Weekday) []string {
	allowed := map[time.Weekday]bool{}
	for _, d := range allowedDays {
		allowed[d] = true
	}

	var dates []string
	for cur, i := start, 0; !cur.After(end) && i < 366; cur, i = cur.AddDate(0, 0, 1), i+1 {
		if len(allowed) == 0 || allowed[cur.Weekday()] {
			dates = append(dates, FormatDate(cur))
		}
	}
	return dates
}
