package model

import "math"

// HealthSample is a single health reading. Readings a peer did not send are nil.
type HealthSample struct {
	UserID       UserID    `json:"userId"`
	HeartRate    *int      `json:"heartRate"`
	StepCount    *int      `json:"stepCount"`
	Calories     *int      `json:"calories"`
	SleepQuality *int      `json:"sleepQuality"`
	Timestamp    Timestamp `json:"timestamp"`
}

// Copy returns a deep copy of the sample
func (s *HealthSample) Copy() *HealthSample {
	if s == nil {
		return nil
	}
	c := *s
	c.HeartRate = copyPtr(s.HeartRate)
	c.StepCount = copyPtr(s.StepCount)
	c.Calories = copyPtr(s.Calories)
	c.SleepQuality = copyPtr(s.SleepQuality)
	return &c
}

// Snapshot returns the sample as it is attached to a presence entry
func (s *HealthSample) Snapshot() *HealthSnapshot {
	if s == nil {
		return nil
	}
	c := s.Copy()
	return &HealthSnapshot{
		HeartRate:    c.HeartRate,
		StepCount:    c.StepCount,
		Calories:     c.Calories,
		SleepQuality: c.SleepQuality,
		Timestamp:    c.Timestamp,
	}
}

// NewerThan reports whether s supersedes other as the latest sample of a user.
// Equal timestamps favor s, the later insert.
func (s *HealthSample) NewerThan(other *HealthSample) bool {
	if other == nil {
		return true
	}
	return !s.Timestamp.Before(other.Timestamp.Time)
}

// HealthSnapshot is the latest health reading of a user in a presence broadcast
type HealthSnapshot struct {
	HeartRate    *int      `json:"heartRate"`
	StepCount    *int      `json:"stepCount"`
	Calories     *int      `json:"calories"`
	SleepQuality *int      `json:"sleepQuality"`
	Timestamp    Timestamp `json:"timestamp"`
}

// WatchID identifies a smartwatch paired by a user
type WatchID string

// WatchSample is a smartwatch sync payload
type WatchSample struct {
	UserID       UserID    `json:"userId"`
	WatchID      WatchID   `json:"watchId"`
	HeartRate    *int      `json:"heartRate"`
	StepCount    *int      `json:"stepCount"`
	Calories     *int      `json:"calories"`
	SleepHours   *float64  `json:"sleepHours"`
	BatteryLevel *int      `json:"battery"`
	Timestamp    Timestamp `json:"timestamp"`
}

// Copy returns a deep copy of the sample
func (s *WatchSample) Copy() *WatchSample {
	if s == nil {
		return nil
	}
	c := *s
	c.HeartRate = copyPtr(s.HeartRate)
	c.StepCount = copyPtr(s.StepCount)
	c.Calories = copyPtr(s.Calories)
	c.SleepHours = copyPtr(s.SleepHours)
	c.BatteryLevel = copyPtr(s.BatteryLevel)
	return &c
}

// DeriveHealthSample converts a watch sync into the health sample stored alongside it.
// Sleep quality is the sleep duration in tenths of an hour, rounded half up.
func (s *WatchSample) DeriveHealthSample() *HealthSample {
	c := s.Copy()
	derived := &HealthSample{
		UserID:    c.UserID,
		HeartRate: c.HeartRate,
		StepCount: c.StepCount,
		Calories:  c.Calories,
		Timestamp: c.Timestamp,
	}
	if c.SleepHours != nil {
		q := SleepQuality(*c.SleepHours)
		derived.SleepQuality = &q
	}
	return derived
}

// SleepQuality scores a sleep duration in hours
func SleepQuality(hours float64) int {
	return int(math.Floor(hours*10 + 0.5))
}
