package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type watchDoc struct {
	UserID       string    `firestore:"user_id"`
	WatchID      string    `firestore:"watch_id"`
	Seq          int64     `firestore:"seq"`
	HeartRate    *int      `firestore:"heart_rate"`
	StepCount    *int      `firestore:"step_count"`
	Calories     *int      `firestore:"calories"`
	SleepHours   *float64  `firestore:"sleep_hours"`
	BatteryLevel *int      `firestore:"battery_level"`
	Timestamp    time.Time `firestore:"timestamp"`
}

type watchRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.WatchRepository = &watchRepository{}

func newWatchRepository(client *firestore.Client) *watchRepository {
	return &watchRepository{
		client: client,
	}
}

func (r *watchRepository) dataCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, watchDataCollection))
}

func (r *watchRepository) counterCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, watchCounterCollection))
}

func (r *watchRepository) Append(ctx context.Context, sample *model.WatchSample) error {
	c := sample.Copy()
	doc := &watchDoc{
		UserID:       c.UserID.String(),
		WatchID:      string(c.WatchID),
		HeartRate:    c.HeartRate,
		StepCount:    c.StepCount,
		Calories:     c.Calories,
		SleepHours:   c.SleepHours,
		BatteryLevel: c.BatteryLevel,
		Timestamp:    c.Timestamp.Time,
	}
	counterRef := r.counterCollection().Doc(c.UserID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var seq int64
		snap, err := tx.Get(counterRef)
		switch {
		case err == nil:
			v, err := snap.DataAt("value")
			if err != nil {
				return goerr.Wrap(err, "failed to get counter value")
			}
			seq, _ = v.(int64)
		case status.Code(err) == codes.NotFound:
		default:
			return goerr.Wrap(err, "failed to get counter")
		}

		doc.Seq = seq + 1
		if err := tx.Create(r.dataCollection().NewDoc(), doc); err != nil {
			return goerr.Wrap(err, "failed to create watch sample")
		}
		return tx.Set(counterRef, map[string]any{"value": doc.Seq})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to append watch sample", goerr.V("userID", sample.UserID))
	}
	return nil
}

func (r *watchRepository) ListByUser(ctx context.Context, id model.UserID) ([]*model.WatchSample, error) {
	docs, err := r.dataCollection().Where("user_id", "==", id.String()).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list watch samples", goerr.V("userID", id))
	}

	entries := make([]*watchDoc, 0, len(docs))
	for _, snap := range docs {
		var doc watchDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal watch sample", goerr.V("docID", snap.Ref.ID))
		}
		entries = append(entries, &doc)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })

	samples := make([]*model.WatchSample, len(entries))
	for i, doc := range entries {
		s := &model.WatchSample{
			UserID:       model.UserID(doc.UserID),
			WatchID:      model.WatchID(doc.WatchID),
			HeartRate:    doc.HeartRate,
			StepCount:    doc.StepCount,
			Calories:     doc.Calories,
			SleepHours:   doc.SleepHours,
			BatteryLevel: doc.BatteryLevel,
		}
		if !doc.Timestamp.IsZero() {
			s.Timestamp = model.NewTimestamp(doc.Timestamp.UTC())
		}
		samples[i] = s
	}
	return samples, nil
}
