package sqldb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

type healthRepository struct {
	db *DB
}

func (r *healthRepository) Append(ctx context.Context, sample *model.HealthSample) error {
	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	args := []any{
		sample.UserID.String(),
		sample.HeartRate,
		sample.StepCount,
		sample.Calories,
		sample.SleepQuality,
		sample.Timestamp.Millis(),
	}

	var id int64
	if err := tx.QueryRowContext(ctx, r.db.rebind(`INSERT INTO health_data
		(user_id, heart_rate, step_count, calories, sleep_quality, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`), args...).Scan(&id); err != nil {
		return goerr.Wrap(err, "failed to insert health sample", goerr.V("userID", sample.UserID))
	}

	// Equal timestamps replace the index entry so ties go to the later insert
	latestArgs := append([]any{id}, args...)
	if _, err := tx.ExecContext(ctx, r.db.rebind(`INSERT INTO health_latest
		(health_id, user_id, heart_rate, step_count, calories, sleep_quality, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			health_id = excluded.health_id,
			heart_rate = excluded.heart_rate,
			step_count = excluded.step_count,
			calories = excluded.calories,
			sleep_quality = excluded.sleep_quality,
			recorded_at = excluded.recorded_at
		WHERE excluded.recorded_at >= health_latest.recorded_at`), latestArgs...); err != nil {
		return goerr.Wrap(err, "failed to update latest health sample", goerr.V("userID", sample.UserID))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit health sample", goerr.V("userID", sample.UserID))
	}
	return nil
}

func (r *healthRepository) Latest(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.HealthSample, error) {
	result := make(map[model.UserID]*model.HealthSample, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	rows, err := r.db.query(ctx, `SELECT user_id, heart_rate, step_count, calories, sleep_quality, recorded_at
		FROM health_latest WHERE user_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest health samples", goerr.V("count", len(ids)))
	}
	defer rows.Close()

	for rows.Next() {
		sample, err := scanHealthSample(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan latest health sample")
		}
		result[sample.UserID] = sample
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate latest health samples")
	}
	return result, nil
}

func (r *healthRepository) ListByUser(ctx context.Context, id model.UserID) ([]*model.HealthSample, error) {
	rows, err := r.db.query(ctx, `SELECT user_id, heart_rate, step_count, calories, sleep_quality, recorded_at
		FROM health_data WHERE user_id = ? ORDER BY id`, id.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query health samples", goerr.V("userID", id))
	}
	defer rows.Close()

	var samples []*model.HealthSample
	for rows.Next() {
		sample, err := scanHealthSample(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan health sample", goerr.V("userID", id))
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate health samples", goerr.V("userID", id))
	}
	return samples, nil
}

func scanHealthSample(s scanner) (*model.HealthSample, error) {
	var (
		userID                                 string
		heartRate, stepCount, calories, sleepQ sql.NullInt64
		recordedAt                             int64
	)
	if err := s.Scan(&userID, &heartRate, &stepCount, &calories, &sleepQ, &recordedAt); err != nil {
		return nil, err
	}

	sample := &model.HealthSample{
		UserID:       model.UserID(userID),
		HeartRate:    intPtr(heartRate),
		StepCount:    intPtr(stepCount),
		Calories:     intPtr(calories),
		SleepQuality: intPtr(sleepQ),
	}
	if recordedAt != 0 {
		sample.Timestamp = model.TimestampFromMillis(recordedAt)
	}
	return sample, nil
}
