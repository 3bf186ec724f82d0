package ws

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// userJoinedData is sent when a peer opens the map
type userJoinedData struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// profileData is sent by the user panel on connect and on profile edits
type profileData struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email" masq:"secret"`
	Status   string          `json:"status"`
	Location json.RawMessage `json:"location"`
	Bio      string          `json:"bio"`
}

func (x *profileData) toUser() *model.User {
	return &model.User{
		ID:       model.UserID(x.ID),
		Name:     x.Name,
		Email:    x.Email,
		Status:   types.UserStatus(x.Status),
		Location: model.ParseLocation(x.Location),
		Bio:      x.Bio,
	}
}

type locationSharingData struct {
	UserID   string          `json:"userId"`
	Location json.RawMessage `json:"location"`
}

// reading accepts any JSON number. Fractions are rounded to the nearest integer.
type reading struct {
	value *float64
}

func (r *reading) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		r.value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// Strings and other non-numeric values are treated as missing readings
		r.value = nil
		return nil
	}
	r.value = &v
	return nil
}

func (r reading) int() *int {
	if r.value == nil {
		return nil
	}
	var v int
	switch f := math.Round(*r.value); {
	case f >= math.MaxInt:
		v = math.MaxInt
	case f <= math.MinInt:
		v = math.MinInt
	default:
		v = int(f)
	}
	return &v
}

func (r reading) float() *float64 {
	if r.value == nil {
		return nil
	}
	v := *r.value
	return &v
}

type healthData struct {
	UserID       string          `json:"userId"`
	HeartRate    reading         `json:"heartRate"`
	StepCount    reading         `json:"stepCount"`
	Calories     reading         `json:"calories"`
	SleepQuality reading         `json:"sleepQuality"`
	Timestamp    model.Timestamp `json:"timestamp"`
}

func (x *healthData) toSample() *model.HealthSample {
	return &model.HealthSample{
		UserID:       model.UserID(x.UserID),
		HeartRate:    x.HeartRate.int(),
		StepCount:    x.StepCount.int(),
		Calories:     x.Calories.int(),
		SleepQuality: x.SleepQuality.int(),
		Timestamp:    x.Timestamp,
	}
}

type watchSyncData struct {
	UserID  string `json:"userId"`
	WatchID string `json:"watchId"`
	Data    struct {
		HeartRate  reading         `json:"heartRate"`
		StepCount  reading         `json:"stepCount"`
		Calories   reading         `json:"calories"`
		SleepHours reading         `json:"sleepHours"`
		Battery    reading         `json:"battery"`
		Timestamp  model.Timestamp `json:"timestamp"`
	} `json:"data"`
}

func (x *watchSyncData) toSample() *model.WatchSample {
	return &model.WatchSample{
		UserID:       model.UserID(x.UserID),
		WatchID:      model.WatchID(x.WatchID),
		HeartRate:    x.Data.HeartRate.int(),
		StepCount:    x.Data.StepCount.int(),
		Calories:     x.Data.Calories.int(),
		SleepHours:   x.Data.SleepHours.float(),
		BatteryLevel: x.Data.Battery.int(),
		Timestamp:    x.Data.Timestamp,
	}
}

// healthUpdateData is broadcast after every health-data event
type healthUpdateData struct {
	UserID     model.UserID        `json:"userId"`
	HealthData *model.HealthSample `json:"healthData"`
}

// decodeUserID reads the subject of user-left, user-logout and delete-account.
// Peers send the bare id as a string; an object carrying userId or id is accepted too.
func decodeUserID(env *model.Envelope) (model.UserID, error) {
	var id string
	if err := json.Unmarshal(env.Data, &id); err == nil {
		if id == "" {
			return "", goerr.New("empty user id", goerr.V("event", env.Event))
		}
		return model.UserID(id), nil
	}

	var obj struct {
		UserID string `json:"userId"`
		ID     string `json:"id"`
	}
	if err := env.Decode(&obj); err != nil {
		return "", err
	}
	switch {
	case obj.UserID != "":
		return model.UserID(obj.UserID), nil
	case obj.ID != "":
		return model.UserID(obj.ID), nil
	}
	return "", goerr.New("empty user id", goerr.V("event", env.Event))
}
