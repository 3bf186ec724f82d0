package slack

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vitalmap/pkg/domain/interfaces"
	"github.com/secmon-lab/vitalmap/pkg/domain/model"
	"github.com/secmon-lab/vitalmap/pkg/domain/types"
	"github.com/secmon-lab/vitalmap/pkg/utils/logging"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

const (
	// DefaultPostInterval keeps posts under the Slack limit of one message per second per channel
	DefaultPostInterval = time.Second

	// maxTextBytes is the Slack limit for message text
	maxTextBytes = 3000
)

// Notifier posts alerts to the Slack channels routed to their alert type
type Notifier struct {
	api     *slack.Client
	routes  map[types.AlertType][]string
	limiter *rate.Limiter
}

var _ interfaces.AlertNotifier = &Notifier{}

// Option is a functional option for Notifier configuration
type Option func(*notifierConfig)

type notifierConfig struct {
	apiURL   string
	interval time.Duration
}

// WithAPIURL points the client at another Slack API endpoint. The URL must end with a slash.
func WithAPIURL(url string) Option {
	return func(c *notifierConfig) {
		c.apiURL = url
	}
}

// WithPostInterval sets the minimum interval between two posts
func WithPostInterval(interval time.Duration) Option {
	return func(c *notifierConfig) {
		c.interval = interval
	}
}

// New creates a Notifier with the provided bot token. routes maps each alert type to
// the channels its alerts go to; alert types without a route are not posted.
func New(token string, routes map[types.AlertType][]string, opts ...Option) (*Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	cfg := &notifierConfig{interval: DefaultPostInterval}
	for _, opt := range opts {
		opt(cfg)
	}

	var slackOpts []slack.Option
	if cfg.apiURL != "" {
		slackOpts = append(slackOpts, slack.OptionAPIURL(cfg.apiURL))
	}

	limit := rate.Inf
	if cfg.interval > 0 {
		limit = rate.Every(cfg.interval)
	}

	copied := make(map[types.AlertType][]string, len(routes))
	for alertType, channels := range routes {
		copied[alertType] = append([]string(nil), channels...)
	}

	return &Notifier{
		api:     slack.New(token, slackOpts...),
		routes:  copied,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Notify posts each alert to its routed channels in order. It stops at the first failed post.
func (n *Notifier) Notify(ctx context.Context, alerts []model.Alert) error {
	for _, alert := range alerts {
		for _, channel := range n.routes[alert.Type] {
			if err := n.limiter.Wait(ctx); err != nil {
				return goerr.Wrap(err, "rate limiter interrupted", goerr.V("channel", channel))
			}

			_, ts, err := n.api.PostMessageContext(ctx, channel, alertMessageOptions(alert)...)
			if err != nil {
				return goerr.Wrap(err, "failed to post alert to Slack",
					goerr.V("channel", channel),
					goerr.V("user_id", alert.UserID),
					goerr.V("reason", alert.Reason),
				)
			}

			logging.From(ctx).Debug("alert posted to Slack",
				"channel", channel,
				"ts", ts,
				"reason", alert.Reason,
			)
		}
	}
	return nil
}

func alertMessageOptions(alert model.Alert) []slack.MsgOption {
	text := truncateToMaxBytes(alert.Message, maxTextBytes)
	return []slack.MsgOption{
		slack.MsgOptionText(text, false),
		slack.MsgOptionAttachments(slack.Attachment{
			Color:    alertColor(alert.Type),
			Fallback: text,
			Fields: []slack.AttachmentField{
				{Title: "Severity", Value: strings.ToUpper(alert.Type.String()), Short: true},
				{Title: "Reason", Value: alert.Reason.String(), Short: true},
				{Title: "User", Value: alert.UserID.String(), Short: true},
			},
		}),
	}
}

func alertColor(t types.AlertType) string {
	switch t {
	case types.AlertTypeCritical:
		return "danger"
	case types.AlertTypeWarning:
		return "warning"
	default:
		return "good"
	}
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
