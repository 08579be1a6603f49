package core

import (
	"time"
)

// Timestamp is a UTC instant with millisecond precision, as stamped on reports
type Timestamp time.Time

// Now returns the current UTC time truncated to milliseconds
func Now() Timestamp {
	return Timestamp(time.Now().UTC().Truncate(time.Millisecond))
}

// MarshalJSON renders the instant as RFC 3339 with milliseconds
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format("2006-01-02T15:04:05.000Z07:00") + `"`), nil
}
