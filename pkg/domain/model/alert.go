package model

import "github.com/secmon-lab/vitalmap/pkg/domain/types"

// Alert is raised when a telemetry reading crosses a threshold. Alerts are
// broadcast and discarded, never stored.
type Alert struct {
	Type    types.AlertType   `json:"type"`
	Message string            `json:"message"`
	UserID  UserID            `json:"userId"`
	Reason  types.AlertReason `json:"reason"`
}
