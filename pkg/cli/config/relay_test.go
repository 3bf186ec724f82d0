package config_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/vitalmap/pkg/cli/config"
)

func TestRelayValidate(t *testing.T) {
	testCases := []struct {
		name     string
		redisURL string
		backend  string
		wantErr  bool
	}{
		{name: "single instance on memory", backend: config.BackendMemory},
		{name: "single instance on sqlite", backend: config.BackendSQLite},
		{name: "relay on postgres", redisURL: "redis://localhost:6379/0", backend: config.BackendPostgres},
		{name: "relay on firestore", redisURL: "redis://localhost:6379/0", backend: config.BackendFirestore},
		{name: "relay on memory", redisURL: "redis://localhost:6379/0", backend: config.BackendMemory, wantErr: true},
		{name: "relay on sqlite", redisURL: "redis://localhost:6379/0", backend: config.BackendSQLite, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := config.NewRepositoryForTest(tc.backend, "", "", "")
			err := config.NewRelayForTest(tc.redisURL, "vitalmap").Validate(repo)
			if tc.wantErr {
				gt.Error(t, err).Is(config.ErrRelayWithoutShared)
				return
			}
			gt.NoError(t, err)
		})
	}
}

func TestRelayConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without URL", func(t *testing.T) {
		r, err := config.NewRelayForTest("", "vitalmap").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, r).Nil()
	})

	t.Run("connects to redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		r, err := config.NewRelayForTest("redis://"+mr.Addr(), "vitalmap").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, r).NotNil()
		gt.NoError(t, r.Close())
	})
}
