package usecase

import (
	"time"

	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
)

// DefaultPresenceWindow is how long a user stays in presence broadcasts after it was last seen
const DefaultPresenceWindow = 5 * time.Minute

type UseCases struct {
	repo           interfaces.Repository
	clock          func() time.Time
	presenceWindow time.Duration
	notifier       interfaces.AlertNotifier

	Presence  *PresenceUseCase
	Telemetry *TelemetryUseCase
}

type Option func(*UseCases)

// WithClock replaces time.Now, mainly for tests
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func WithPresenceWindow(window time.Duration) Option {
	return func(uc *UseCases) {
		uc.presenceWindow = window
	}
}

// WithAlertNotifier forwards every raised alert to the notifier in background
func WithAlertNotifier(notifier interfaces.AlertNotifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:           repo,
		clock:          time.Now,
		presenceWindow: DefaultPresenceWindow,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Presence = NewPresenceUseCase(repo, uc.clock, uc.presenceWindow)
	uc.Telemetry = NewTelemetryUseCase(repo, uc.clock, uc.notifier)

	return uc
}
