package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

func TestParseLocation(t *testing.T) {
	t.Run("object with optional fields", func(t *testing.T) {
		loc := model.ParseLocation(json.RawMessage(`{"lat":41.0082,"lng":28.9784,"altitude":null,"accuracy":12.5,"heading":90,"timestamp":1741944413589}`))
		gt.Value(t, loc).NotNil()
		gt.Value(t, loc.Lat).Equal(41.0082)
		gt.Value(t, loc.Lng).Equal(28.9784)
		gt.Value(t, loc.Accuracy).Equal(12.5)
		gt.Value(t, loc.Altitude).Nil()
		gt.Value(t, loc.Speed).Nil()
		gt.Value(t, *loc.Heading).Equal(90.0)
		gt.Value(t, loc.Timestamp.Millis()).Equal(int64(1741944413589))
	})

	t.Run("object serialized into a string", func(t *testing.T) {
		loc := model.ParseLocation(json.RawMessage(`"{\"lat\":1.5,\"lng\":2.5,\"accuracy\":3}"`))
		gt.Value(t, loc).NotNil()
		gt.Value(t, loc.Lat).Equal(1.5)
		gt.Value(t, loc.Lng).Equal(2.5)
	})

	for _, raw := range []string{``, `null`, `""`, `"somewhere"`, `42`, `[1,2]`, `{"lat":"north"}`} {
		t.Run("unreadable "+raw, func(t *testing.T) {
			gt.Value(t, model.ParseLocation(json.RawMessage(raw))).Nil()
		})
	}
}

func TestMarshalLocation(t *testing.T) {
	s, err := model.MarshalLocation(nil)
	gt.NoError(t, err).Required()
	gt.Value(t, s).Equal("")

	alt := 120.0
	s, err = model.MarshalLocation(&model.Location{Lat: 1, Lng: 2, Altitude: &alt})
	gt.NoError(t, err).Required()

	loc := model.ParseLocation(json.RawMessage(s))
	gt.Value(t, loc).NotNil()
	gt.Value(t, *loc.Altitude).Equal(120.0)
}

func TestLocation_Copy(t *testing.T) {
	speed := 3.2
	orig := &model.Location{Lat: 1, Lng: 2, Speed: &speed}
	c := orig.Copy()
	*c.Speed = 9
	gt.Value(t, *orig.Speed).Equal(3.2)

	var nilLoc *model.Location
	gt.Value(t, nilLoc.Copy()).Nil()
}
