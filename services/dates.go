package services

import (
	"time"

	"github.com/yeremiapane/hospital-app/utils"
)

const DateLayout = "2006-01-02"

// DayBounds returns midnight of day and of the following day, in day's location.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// ParseDay reads a YYYY-MM-DD date as a UTC day. An empty string means today.
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	day, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, utils.Validation("date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
