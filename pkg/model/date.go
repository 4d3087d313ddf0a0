package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD or RFC3339")

// ParseDate accepts a calendar date or an RFC3339 timestamp and returns UTC midnight of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return TruncateDay(t), nil
}

func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights counts whole days between two UTC-midnight dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Round(checkOut.Sub(checkIn).Hours() / 24))
}

// TotalPrice multiplies the nightly price by nights, rounded to cents.
func TotalPrice(price float64, nights int) float64 {
	return math.Round(price*float64(nights)*100) / 100
}

// MinorUnits converts an amount in currency units to the smallest unit (cents).
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
