package usecase

import (
	"fmt"
	"strconv"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
)

// Alert thresholds. Every comparison is strict.
const (
	LowHeartRate     = 50
	HighHeartRate    = 120
	DailyStepGoal    = 15000
	LowBatteryLevel  = 20
	MinimumSleepHour = 6.0
)

// EvaluateHealthAlerts checks a health sample against the thresholds. Missing readings never alert.
func EvaluateHealthAlerts(sample *model.HealthSample) []model.Alert {
	var alerts []model.Alert
	if sample == nil {
		return alerts
	}

	if a := heartRateAlert(sample.UserID, sample.HeartRate); a != nil {
		alerts = append(alerts, *a)
	}

	if sample.StepCount != nil && *sample.StepCount > DailyStepGoal {
		alerts = append(alerts, model.Alert{
			Type:    types.AlertTypeInfo,
			Reason:  types.AlertReasonStepGoal,
			UserID:  sample.UserID,
			Message: fmt.Sprintf("%s exceeded the daily step goal: %d steps", sample.UserID, *sample.StepCount),
		})
	}

	return alerts
}

// EvaluateWatchAlerts checks a watch sync against the thresholds. Missing readings never alert.
func EvaluateWatchAlerts(sample *model.WatchSample) []model.Alert {
	var alerts []model.Alert
	if sample == nil {
		return alerts
	}

	if sample.BatteryLevel != nil && *sample.BatteryLevel < LowBatteryLevel {
		alerts = append(alerts, model.Alert{
			Type:    types.AlertTypeWarning,
			Reason:  types.AlertReasonLowBattery,
			UserID:  sample.UserID,
			Message: fmt.Sprintf("%s's smartwatch battery is low: %d%%", sample.UserID, *sample.BatteryLevel),
		})
	}

	if a := heartRateAlert(sample.UserID, sample.HeartRate); a != nil {
		alerts = append(alerts, *a)
	}

	if sample.SleepHours != nil && *sample.SleepHours < MinimumSleepHour {
		alerts = append(alerts, model.Alert{
			Type:    types.AlertTypeWarning,
			Reason:  types.AlertReasonLowSleep,
			UserID:  sample.UserID,
			Message: fmt.Sprintf("%s did not get enough sleep: %s hours", sample.UserID, strconv.FormatFloat(*sample.SleepHours, 'f', -1, 64)),
		})
	}

	return alerts
}

func heartRateAlert(id model.UserID, heartRate *int) *model.Alert {
	if heartRate == nil {
		return nil
	}

	switch hr := *heartRate; {
	case hr < LowHeartRate:
		return &model.Alert{
			Type:    types.AlertTypeCritical,
			Reason:  types.AlertReasonLowHeartRate,
			UserID:  id,
			Message: fmt.Sprintf("%s's heart rate is too low: %d BPM", id, hr),
		}
	case hr > HighHeartRate:
		return &model.Alert{
			Type:    types.AlertTypeWarning,
			Reason:  types.AlertReasonHighHeartRate,
			UserID:  id,
			Message: fmt.Sprintf("%s's heart rate is high: %d BPM", id, hr),
		}
	}
	return nil
}
