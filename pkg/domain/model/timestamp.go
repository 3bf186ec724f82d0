package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayout mirrors Date.prototype.toISOString so browser peers can parse it directly
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var timestampParseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z0700",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// maxTimestampMillis is the largest magnitude Date accepts (8.64e15 ms)
const maxTimestampMillis = 8.64e15

// Timestamp is a point in time reported by a peer. On the wire it accepts epoch
// milliseconds or an ISO-8601 string, and is always written as ISO-8601 UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// TimestampFromMillis converts epoch milliseconds to a Timestamp
func TimestampFromMillis(ms int64) Timestamp {
	return Timestamp{Time: time.UnixMilli(ms).UTC()}
}

// Millis returns epoch milliseconds, 0 for the zero value
func (t Timestamp) Millis() int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(timestampLayout))
}

// UnmarshalJSON never fails. A value that cannot be read as a time leaves the
// zero Timestamp so the receiver stamps its own clock instead of dropping the event.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = parseTimestamp(bytes.TrimSpace(data))
	return nil
}

func parseTimestamp(data []byte) Timestamp {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Timestamp{}
	}

	if data[0] != '"' {
		ms, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return Timestamp{}
		}
		return timestampFromFloatMillis(ms)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return Timestamp{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TimestampFromMillis(ms)
	}
	// Date.prototype.toString appends the zone name in parentheses
	if i := strings.Index(s, " ("); i > 0 {
		s = s[:i]
	}
	for _, layout := range timestampParseLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: parsed.UTC()}
		}
	}
	return Timestamp{}
}

func timestampFromFloatMillis(ms float64) Timestamp {
	if math.IsNaN(ms) || math.Abs(ms) > maxTimestampMillis {
		return Timestamp{}
	}
	return TimestampFromMillis(int64(ms))
}
