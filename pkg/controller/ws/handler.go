package ws

import (
	"context"

	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

func (g *Gateway) handleUserJoined(ctx context.Context, s *Session, env *model.Envelope) error {
	var data userJoinedData
	if err := env.Decode(&data); err != nil {
		return err
	}
	logging.From(ctx).Info("user joined", "user_id", data.UserID, "name", data.Name)

	if err := g.uc.Presence.Join(ctx, model.UserID(data.UserID), data.Name); err != nil {
		return err
	}
	return s.BroadcastPresence(ctx)
}

func (g *Gateway) handleUserConnected(ctx context.Context, s *Session, env *model.Envelope) error {
	var data profileData
	if err := env.Decode(&data); err != nil {
		return err
	}
	logging.From(ctx).Info("user connected", "user_id", data.ID, "profile", data)

	if err := g.uc.Presence.Connect(ctx, data.toUser()); err != nil {
		return err
	}
	return s.BroadcastPresence(ctx)
}

func (g *Gateway) handleLocationSharing(ctx context.Context, s *Session, env *model.Envelope) error {
	var data locationSharingData
	if err := env.Decode(&data); err != nil {
		return err
	}
	logging.From(ctx).Debug("location shared", "user_id", data.UserID)

	if err := g.uc.Presence.ShareLocation(ctx, model.UserID(data.UserID), model.ParseLocation(data.Location)); err != nil {
		return err
	}
	return s.BroadcastPresence(ctx)
}

func (g *Gateway) handleUpdateUser(ctx context.Context, s *Session, env *model.Envelope) error {
	var data profileData
	if err := env.Decode(&data); err != nil {
		return err
	}
	logging.From(ctx).Info("user updated", "user_id", data.ID, "profile", data)

	if err := g.uc.Presence.UpdateProfile(ctx, data.toUser()); err != nil {
		return err
	}
	return s.BroadcastPresence(ctx)
}

func (g *Gateway) handleUserLeft(ctx context.Context, s *Session, env *model.Envelope) error {
	id, err := decodeUserID(env)
	if err != nil {
		return err
	}
	logging.From(ctx).Info("user left", "user_id", id)

	if err := g.uc.Presence.Leave(ctx, id); err != nil {
		return err
	}
	return s.BroadcastPresence(ctx)
}

func (g *Gateway) handleUserLogout(ctx context.Context, s *Session, env *model.Envelope) error {
	id, err := decodeUserID(env)
	if err != nil {
		return err
	}
	logging.From(ctx).Info("user logged out", "user_id", id)

	if err := g.uc.Presence.Logout(ctx, id); err != nil {
		return err
	}
	return s.BroadcastPresence(ctx)
}

func (g *Gateway) handleDeleteAccount(ctx context.Context, s *Session, env *model.Envelope) error {
	id, err := decodeUserID(env)
	if err != nil {
		return err
	}
	logging.From(ctx).Info("account deleted", "user_id", id)

	if err := g.uc.Presence.DeleteAccount(ctx, id); err != nil {
		return err
	}
	return s.BroadcastPresence(ctx)
}

func (g *Gateway) handleHealthData(ctx context.Context, s *Session, env *model.Envelope) error {
	var data healthData
	if err := env.Decode(&data); err != nil {
		return err
	}

	sample, alerts, err := g.uc.Telemetry.RecordHealthSample(ctx, data.toSample())
	if err != nil {
		return err
	}
	logging.From(ctx).Debug("health data recorded", "user_id", sample.UserID, "alerts", len(alerts))

	for _, alert := range alerts {
		if err := s.Broadcast(ctx, types.EventHealthAlert, alert); err != nil {
			return err
		}
	}
	return s.Broadcast(ctx, types.EventHealthUpdate, &healthUpdateData{
		UserID:     sample.UserID,
		HealthData: sample,
	})
}

func (g *Gateway) handleWatchSync(ctx context.Context, s *Session, env *model.Envelope) error {
	var data watchSyncData
	if err := env.Decode(&data); err != nil {
		return err
	}

	sample := data.toSample()
	_, alerts, err := g.uc.Telemetry.RecordWatchSample(ctx, sample)
	if err != nil {
		return err
	}
	logging.From(ctx).Debug("watch synced", "user_id", sample.UserID, "watch_id", sample.WatchID, "alerts", len(alerts))

	if err := s.BroadcastPresence(ctx); err != nil {
		return err
	}
	for _, alert := range alerts {
		if err := s.Broadcast(ctx, types.EventWatchAlert, alert); err != nil {
			return err
		}
	}
	return nil
}
