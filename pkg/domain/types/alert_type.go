package types

import "fmt"

// AlertType is the severity of an alert raised from a telemetry sample
type AlertType string

const (
	AlertTypeCritical AlertType = "critical"
	AlertTypeWarning  AlertType = "warning"
	AlertTypeInfo     AlertType = "info"
)

// AllAlertTypes returns all valid alert types, most severe first
func AllAlertTypes() []AlertType {
	return []AlertType{
		AlertTypeCritical,
		AlertTypeWarning,
		AlertTypeInfo,
	}
}

// IsValid checks if the alert type is valid
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeCritical,
		AlertTypeWarning,
		AlertTypeInfo:
		return true
	default:
		return false
	}
}

// String returns the string representation of the alert type
func (t AlertType) String() string {
	return string(t)
}

// ParseAlertType parses a string into an AlertType
func ParseAlertType(s string) (AlertType, error) {
	t := AlertType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid alert type: %s", s)
	}
	return t, nil
}

// AlertReason identifies which threshold produced an alert
type AlertReason string

const (
	AlertReasonLowHeartRate  AlertReason = "low_heart_rate"
	AlertReasonHighHeartRate AlertReason = "high_heart_rate"
	AlertReasonStepGoal      AlertReason = "step_goal"
	AlertReasonLowBattery    AlertReason = "low_battery"
	AlertReasonLowSleep      AlertReason = "low_sleep"
)

// String returns the string representation of the alert reason
func (r AlertReason) String() string {
	return string(r)
}
