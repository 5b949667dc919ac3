package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                 string
		aIn, aOut, bIn, bOut string
		want                 bool
	}{
		{"back to back turnover", "2024-01-01", "2024-01-05", "2024-01-05", "2024-01-10", false},
		{"one shared night", "2024-01-01", "2024-01-05", "2024-01-04", "2024-01-10", true},
		{"contained", "2024-01-01", "2024-01-10", "2024-01-03", "2024-01-04", true},
		{"identical", "2024-06-01", "2024-06-03", "2024-06-01", "2024-06-03", true},
		{"disjoint", "2024-01-01", "2024-01-02", "2024-02-01", "2024-02-02", false},
		{"ends before start", "2024-01-05", "2024-01-07", "2024-01-01", "2024-01-05", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(day(tc.aIn), day(tc.aOut), day(tc.bIn), day(tc.bOut))
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Overlaps(day(tc.bIn), day(tc.bOut), day(tc.aIn), day(tc.aOut)), "overlap must be symmetric")
		})
	}
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Nights(day("2024-06-01"), day("2024-06-04")))
	assert.Equal(t, 0, Nights(day("2024-06-01"), day("2024-06-01")))
	assert.Equal(t, -1, Nights(day("2024-06-02"), day("2024-06-01")))
	// month and leap-year boundaries
	assert.Equal(t, 2, Nights(day("2024-02-28"), day("2024-03-01")))

	late := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 1, Nights(late, day("2024-06-02")))
}

func TestNightsBeyondDurationRange(t *testing.T) {
	assert.Equal(t, 137331, Nights(day("2024-01-01"), day("2400-01-01")))
	assert.Equal(t, 3652058, Nights(day("0001-01-01"), day("9999-12-31")))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(day("2024-06-01"), day("2024-06-02")))
	assert.ErrorIs(t, Validate(day("2024-06-01"), day("2024-06-01")), ErrEmpty)
	assert.ErrorIs(t, Validate(day("2024-06-03"), day("2024-06-01")), ErrEmpty)
}
