package interfaces

import (
	"context"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
)

// AlertNotifier forwards alerts to an out-of-band channel such as Slack
type AlertNotifier interface {
	Notify(ctx context.Context, alerts []model.Alert) error
}
