package util

import "time"

// DateTimeFormat is the wire and storage format for all poster dates.
const DateTimeFormat = "2006-01-02 15:04:05"

// ParseDateTime parses a string like "2006-01-02 15:04:05" in local time.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeFormat, s, time.Local)
}

// FormatDateTime is the inverse of ParseDateTime.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}
