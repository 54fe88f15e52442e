// Package slack implements the notify Transport for Slack.
package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/cascadehq/cascade/internal/notify"
)

// client abstracts the Slack API methods we use, enabling test mocks.
type client interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Transport posts workflow notifications to a Slack channel. Send-only.
type Transport struct {
	client    client
	channelID string
}

// Opts holds parameters for creating a Slack Transport.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client client
}

// New creates a Slack Transport.
func New(opts Opts) (*Transport, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel ID is required")
	}
	t := &Transport{channelID: opts.ChannelID, client: opts.Client}
	if t.client == nil {
		t.client = slackapi.New(opts.BotToken)
	}
	return t, nil
}

// Name identifies the transport in logs.
func (t *Transport) Name() string { return "slack" }

// Send posts the message as an attachment with a severity color.
func (t *Transport) Send(ctx context.Context, msg notify.Message) error {
	att := slackapi.Attachment{
		Title: msg.Title,
		Text:  msg.Text,
		Color: notify.SeverityColor(msg.Severity),
		Footer: msg.Type,
	}
	_, _, err := t.client.PostMessageContext(ctx, t.channelID, slackapi.MsgOptionAttachments(att))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}
