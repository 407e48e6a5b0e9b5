package protocol

import "time"

// TimestampLayout is the textual timestamp format used on the wire and in the
// temp-ID journal: day/month/year hour:minute:second.
const TimestampLayout = "02/01/06 15:04:05"

// TimestampLength is the byte length of a formatted timestamp.
const TimestampLength = len(TimestampLayout)

// FormatTimestamp renders t in the wire format.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a wire-format timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
