package model

import (
	"bytes"
	"encoding/json"
)

// Location is the last known geolocation fix of a user as captured by the browser
type Location struct {
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	Altitude         *float64  `json:"altitude"`
	Accuracy         float64   `json:"accuracy"`
	AltitudeAccuracy *float64  `json:"altitudeAccuracy"`
	Heading          *float64  `json:"heading"`
	Speed            *float64  `json:"speed"`
	Timestamp        Timestamp `json:"timestamp"`
}

// Copy returns a deep copy of the location. nil stays nil.
func (l *Location) Copy() *Location {
	if l == nil {
		return nil
	}
	c := *l
	c.Altitude = copyPtr(l.Altitude)
	c.AltitudeAccuracy = copyPtr(l.AltitudeAccuracy)
	c.Heading = copyPtr(l.Heading)
	c.Speed = copyPtr(l.Speed)
	return &c
}

// ParseLocation decodes a location leniently. Peers send either an object, an object
// serialized into a string, an empty string or null. Anything that cannot be read as
// a location yields nil rather than an error.
func ParseLocation(raw json.RawMessage) *Location {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return nil
		}
		return ParseLocation(json.RawMessage(s))
	}

	if raw[0] != '{' {
		return nil
	}

	var loc Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil
	}
	return &loc
}

// MarshalLocation serializes a location for storage. nil is stored as an empty string.
func MarshalLocation(l *Location) (string, error) {
	if l == nil {
		return "", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
