package services

import (
	"fmt"
	"time"
)

// maxYear is the last year an instant may fall in; RFC3339 has four year digits.
const maxYear = 9999

// FromMillis converts milliseconds since the Unix epoch into a UTC instant.
// Negative values and instants past year 9999 are rejected.
func FromMillis(ms int64) (time.Time, error) {
	if ms < 0 {
		return time.Time{}, fmt.Errorf("%w: %d ms is before the Unix epoch", ErrInvalidTimestamp, ms)
	}
	t := time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond)).UTC()
	if err := checkInstant(t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// ToMillis converts an instant back to milliseconds since the Unix epoch.
// Sub-millisecond precision is dropped.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// checkInstant reports whether t is an instant the store accepts.
func checkInstant(t time.Time) error {
	switch {
	case t.IsZero():
		return fmt.Errorf("%w: timestamp is empty", ErrInvalidTimestamp)
	case t.Before(time.Unix(0, 0)):
		return fmt.Errorf("%w: %s is before the Unix epoch", ErrInvalidTimestamp, t.UTC().Format(time.RFC3339Nano))
	case t.UTC().Year() > maxYear:
		return fmt.Errorf("%w: year %d is out of range", ErrInvalidTimestamp, t.UTC().Year())
	}
	return nil
}
