package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
)

// DefaultChannel is the Redis pub/sub channel shared by all instances
const DefaultChannel = "vitalmap:events"

// frame is the payload published on the channel
type frame struct {
	Origin   string          `json:"origin"`
	Envelope *model.Envelope `json:"envelope"`
}

// Redis relays envelopes between instances over Redis pub/sub
type Redis struct {
	client  *redis.Client
	channel string
	origin  string
}

var _ interfaces.Relay = &Redis{}

type Option func(*Redis)

func WithChannel(channel string) Option {
	return func(r *Redis) {
		r.channel = channel
	}
}

// NewRedis connects to the Redis server at url, e.g. redis://localhost:6379/0
func NewRedis(ctx context.Context, url string, opts ...Option) (*Redis, error) {
	if url == "" {
		return nil, goerr.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse redis URL")
	}

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to ping redis", goerr.V("addr", redisOpts.Addr))
	}

	return NewRedisWithClient(client, opts...), nil
}

// NewRedisWithClient builds a relay on an existing client. The relay takes ownership of the client.
func NewRedisWithClient(client *redis.Client, opts ...Option) *Redis {
	r := &Redis{
		client:  client,
		channel: DefaultChannel,
		origin:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Origin returns the id stamped on frames published by this instance
func (r *Redis) Origin() string {
	return r.origin
}

func (r *Redis) Publish(ctx context.Context, env *model.Envelope) error {
	data, err := json.Marshal(&frame{Origin: r.origin, Envelope: env})
	if err != nil {
		return goerr.Wrap(err, "failed to encode relay frame", goerr.V("event", env.Event))
	}

	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return goerr.Wrap(err, "failed to publish relay frame", goerr.V("event", env.Event), goerr.V("channel", r.channel))
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, handler func(env *model.Envelope)) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = pubsub.Close() }()

	// Wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		return goerr.Wrap(err, "failed to subscribe relay channel", goerr.V("channel", r.channel))
	}
	logging.From(ctx).Info("relay subscribed", "channel", r.channel, "origin", r.origin)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-ch:
			if !ok {
				return goerr.New("relay channel closed", goerr.V("channel", r.channel))
			}

			var f frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil || f.Envelope == nil {
				logging.From(ctx).Warn("ignoring malformed relay frame", "channel", r.channel)
				continue
			}
			if f.Origin == r.origin {
				continue
			}
			handler(f.Envelope)
		}
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
