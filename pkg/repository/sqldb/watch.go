package sqldb

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

type watchRepository struct {
	db *DB
}

func (r *watchRepository) Append(ctx context.Context, sample *model.WatchSample) error {
	_, err := r.db.exec(ctx, `INSERT INTO watch_data
		(user_id, watch_id, heart_rate, step_count, calories, sleep_hours, battery_level, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sample.UserID.String(),
		string(sample.WatchID),
		sample.HeartRate,
		sample.StepCount,
		sample.Calories,
		sample.SleepHours,
		sample.BatteryLevel,
		sample.Timestamp.Millis(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert watch sample", goerr.V("userID", sample.UserID))
	}
	return nil
}

func (r *watchRepository) ListByUser(ctx context.Context, id model.UserID) ([]*model.WatchSample, error) {
	rows, err := r.db.query(ctx, `SELECT user_id, watch_id, heart_rate, step_count, calories, sleep_hours, battery_level, recorded_at
		FROM watch_data WHERE user_id = ? ORDER BY id`, id.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query watch samples", goerr.V("userID", id))
	}
	defer rows.Close()

	var samples []*model.WatchSample
	for rows.Next() {
		var (
			userID, watchID                string
			heartRate, stepCount, calories sql.NullInt64
			sleepHours                     sql.NullFloat64
			battery                        sql.NullInt64
			recordedAt                     int64
		)
		if err := rows.Scan(&userID, &watchID, &heartRate, &stepCount, &calories, &sleepHours, &battery, &recordedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan watch sample", goerr.V("userID", id))
		}

		sample := &model.WatchSample{
			UserID:       model.UserID(userID),
			WatchID:      model.WatchID(watchID),
			HeartRate:    intPtr(heartRate),
			StepCount:    intPtr(stepCount),
			Calories:     intPtr(calories),
			SleepHours:   floatPtr(sleepHours),
			BatteryLevel: intPtr(battery),
		}
		if recordedAt != 0 {
			sample.Timestamp = model.TimestampFromMillis(recordedAt)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate watch samples", goerr.V("userID", id))
	}
	return samples, nil
}
