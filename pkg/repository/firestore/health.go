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

type healthDoc struct {
	UserID       string    `firestore:"user_id"`
	Seq          int64     `firestore:"seq"`
	HeartRate    *int      `firestore:"heart_rate"`
	StepCount    *int      `firestore:"step_count"`
	Calories     *int      `firestore:"calories"`
	SleepQuality *int      `firestore:"sleep_quality"`
	Timestamp    time.Time `firestore:"timestamp"`
}

// healthLatestDoc indexes the latest sample of a user. Seq counts every append of
// the user and orders the log.
type healthLatestDoc struct {
	Seq    int64      `firestore:"seq"`
	Sample *healthDoc `firestore:"sample"`
}

type healthRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.HealthRepository = &healthRepository{}

func newHealthRepository(client *firestore.Client) *healthRepository {
	return &healthRepository{
		client: client,
	}
}

func (r *healthRepository) dataCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, healthDataCollection))
}

func (r *healthRepository) latestCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, healthLatestCollection))
}

func toHealthDoc(s *model.HealthSample) *healthDoc {
	c := s.Copy()
	return &healthDoc{
		UserID:       c.UserID.String(),
		HeartRate:    c.HeartRate,
		StepCount:    c.StepCount,
		Calories:     c.Calories,
		SleepQuality: c.SleepQuality,
		Timestamp:    c.Timestamp.Time,
	}
}

func fromHealthDoc(doc *healthDoc) *model.HealthSample {
	s := &model.HealthSample{
		UserID:       model.UserID(doc.UserID),
		HeartRate:    doc.HeartRate,
		StepCount:    doc.StepCount,
		Calories:     doc.Calories,
		SleepQuality: doc.SleepQuality,
	}
	if !doc.Timestamp.IsZero() {
		s.Timestamp = model.NewTimestamp(doc.Timestamp.UTC())
	}
	return s
}

func (r *healthRepository) Append(ctx context.Context, sample *model.HealthSample) error {
	latestRef := r.latestCollection().Doc(sample.UserID.String())
	doc := toHealthDoc(sample)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var latest healthLatestDoc
		snap, err := tx.Get(latestRef)
		switch {
		case err == nil:
			if err := snap.DataTo(&latest); err != nil {
				return goerr.Wrap(err, "failed to unmarshal latest health sample")
			}
		case status.Code(err) == codes.NotFound:
		default:
			return goerr.Wrap(err, "failed to get latest health sample")
		}

		doc.Seq = latest.Seq + 1
		if err := tx.Create(r.dataCollection().NewDoc(), doc); err != nil {
			return goerr.Wrap(err, "failed to create health sample")
		}

		latest.Seq = doc.Seq
		if latest.Sample == nil || fromHealthDoc(doc).NewerThan(fromHealthDoc(latest.Sample)) {
			latest.Sample = doc
		}
		return tx.Set(latestRef, &latest)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to append health sample", goerr.V("userID", sample.UserID))
	}
	return nil
}

func (r *healthRepository) Latest(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.HealthSample, error) {
	result := make(map[model.UserID]*model.HealthSample, len(ids))

	for i := 0; i < len(ids); i += firestoreGetAllLimit {
		end := min(i+firestoreGetAllLimit, len(ids))
		batch := ids[i:end]

		refs := make([]*firestore.DocumentRef, len(batch))
		for j, id := range batch {
			refs[j] = r.latestCollection().Doc(id.String())
		}

		snaps, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to batch get latest health samples", goerr.V("count", len(batch)))
		}

		for idx, snap := range snaps {
			if !snap.Exists() {
				continue
			}
			var latest healthLatestDoc
			if err := snap.DataTo(&latest); err != nil {
				return nil, goerr.Wrap(err, "failed to unmarshal latest health sample", goerr.V("userID", batch[idx]))
			}
			if latest.Sample != nil {
				result[batch[idx]] = fromHealthDoc(latest.Sample)
			}
		}
	}

	return result, nil
}

func (r *healthRepository) ListByUser(ctx context.Context, id model.UserID) ([]*model.HealthSample, error) {
	// Single-field filter only; ordering is done here to avoid a composite index
	docs, err := r.dataCollection().Where("user_id", "==", id.String()).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list health samples", goerr.V("userID", id))
	}

	entries := make([]*healthDoc, 0, len(docs))
	for _, snap := range docs {
		var doc healthDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal health sample", goerr.V("docID", snap.Ref.ID))
		}
		entries = append(entries, &doc)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })

	samples := make([]*model.HealthSample, len(entries))
	for i, doc := range entries {
		samples[i] = fromHealthDoc(doc)
	}
	return samples, nil
}
