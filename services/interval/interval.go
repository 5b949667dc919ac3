// Package interval compares half-open calendar date ranges.
package interval

import (
	"errors"
	"time"
)

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any day.
// A range ending on day D does not overlap one starting on day D.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Nights returns the number of whole days from checkIn to checkOut.
// Time-of-day and location are ignored; the result is negative when
// checkOut precedes checkIn.
func Nights(checkIn, checkOut time.Time) int {
	return int((Day(checkOut).Unix() - Day(checkIn).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// ErrEmpty is returned for a range that does not cover at least one night.
var ErrEmpty = errors.New("check-out must be at least one day after check-in")

// Validate returns ErrEmpty unless [checkIn, checkOut) spans at least one night.
func Validate(checkIn, checkOut time.Time) error {
	if Nights(checkIn, checkOut) < 1 {
		return ErrEmpty
	}
	return nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
