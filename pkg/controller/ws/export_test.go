package ws

import "github.com/secmon-lab/vitalmap/pkg/domain/model"

// DecodeUserID is exported for testing
var DecodeUserID = decodeUserID

// DecodeHealthData is exported for testing
func DecodeHealthData(env *model.Envelope) (*model.HealthSample, error) {
	var data healthData
	if err := env.Decode(&data); err != nil {
		return nil, err
	}
	return data.toSample(), nil
}

// DecodeWatchSync is exported for testing
func DecodeWatchSync(env *model.Envelope) (*model.WatchSample, error) {
	var data watchSyncData
	if err := env.Decode(&data); err != nil {
		return nil, err
	}
	return data.toSample(), nil
}
