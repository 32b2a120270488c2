package models

import "time"

// ISOLayout matches the millisecond UTC form browsers produce with toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISO accepts ISOLayout and plain RFC3339 timestamps.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
