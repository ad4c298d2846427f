package money

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var weekIDPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// WeekID formats a timestamp as an ISO-8601 week identifier, "2024-W07".
func WeekID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthID formats a timestamp as "YYYY-MM".
func MonthID(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// PreviousWeekID returns the identifier of the ISO week before the one
// containing t.
func PreviousWeekID(t time.Time) string {
	return WeekID(t.UTC().AddDate(0, 0, -7))
}

// WeekBounds resolves a week identifier to its UTC [start, end) interval.
// Start is the week's Monday at midnight; end is the following Monday.
func WeekBounds(weekID string) (time.Time, time.Time, error) {
	match := weekIDPattern.FindStringSubmatch(weekID)
	if match == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week identifier %q", weekID)
	}
	year, _ := strconv.Atoi(match[1])
	week, _ := strconv.Atoi(match[2])
	if week < 1 || week > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week identifier %q", weekID)
	}

	// January 4th always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	isoWeekday := int(jan4.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-isoWeekday)

	start := week1Monday.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 7), nil
}
