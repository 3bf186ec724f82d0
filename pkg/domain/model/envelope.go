package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// Envelope is one frame on the realtime channel, in either direction
type Envelope struct {
	Event types.EventName `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope encodes data under the given event name
func NewEnvelope(event types.EventName, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal event data", goerr.V("event", event))
	}
	return &Envelope{Event: event, Data: raw}, nil
}

// Decode unmarshals the envelope data into v
func (e *Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return goerr.New("event has no data", goerr.V("event", e.Event))
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return goerr.Wrap(err, "failed to decode event data", goerr.V("event", e.Event))
	}
	return nil
}
