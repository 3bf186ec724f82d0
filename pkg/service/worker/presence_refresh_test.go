package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/service/worker"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshPresence(ctx context.Context) error {
	r.calls.Add(1)
	return r.err
}

func waitCalls(t *testing.T, r *countingRefresher, n int32) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if r.calls.Load() >= n {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("expected at least %d refreshes, got %d", n, r.calls.Load())
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "every descriptor", schedule: "@every 1m"},
		{name: "standard spec", schedule: "*/5 * * * *"},
		{name: "hourly descriptor", schedule: "@hourly"},
		{name: "empty", schedule: "", wantErr: true},
		{name: "garbage", schedule: "sometimes", wantErr: true},
		{name: "seconds field is not accepted", schedule: "0 */5 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := worker.ValidateSchedule(tt.schedule)
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestPresenceRefreshWorker(t *testing.T) {
	t.Run("refreshes on schedule until stopped", func(t *testing.T) {
		refresher := &countingRefresher{}
		w, err := worker.NewPresenceRefreshWorker(refresher, "@every 1s")
		gt.NoError(t, err).Required()

		gt.NoError(t, w.Start(context.Background())).Required()
		waitCalls(t, refresher, 2)
		w.Stop()

		stopped := refresher.calls.Load()
		time.Sleep(1500 * time.Millisecond)
		gt.Value(t, refresher.calls.Load()).Equal(stopped)
	})

	t.Run("keeps running after a failed refresh", func(t *testing.T) {
		refresher := &countingRefresher{err: errors.New("store down")}
		w, err := worker.NewPresenceRefreshWorker(refresher, "@every 1s")
		gt.NoError(t, err).Required()

		gt.NoError(t, w.Start(context.Background())).Required()
		defer w.Stop()

		waitCalls(t, refresher, 2)
	})

	t.Run("skips refresh after context is cancelled", func(t *testing.T) {
		refresher := &countingRefresher{}
		w, err := worker.NewPresenceRefreshWorker(refresher, "@every 1s")
		gt.NoError(t, err).Required()

		ctx, cancel := context.WithCancel(context.Background())
		gt.NoError(t, w.Start(ctx)).Required()
		cancel()
		time.Sleep(1500 * time.Millisecond)
		w.Stop()

		gt.Value(t, refresher.calls.Load()).Equal(int32(0))
	})

	t.Run("rejects invalid schedule", func(t *testing.T) {
		_, err := worker.NewPresenceRefreshWorker(&countingRefresher{}, "not a schedule")
		gt.Error(t, err)
	})
}
