// Package discord implements the notify Transport for Discord.
package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/cascadehq/cascade/internal/notify"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Transport posts workflow notifications to a Discord channel. Send-only.
type Transport struct {
	sess      session
	channelID string
}

// Opts holds parameters for creating a Discord Transport.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session session
}

// New creates a Discord Transport.
func New(opts Opts) (*Transport, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel ID is required")
	}
	t := &Transport{channelID: opts.ChannelID, sess: opts.Session}
	if t.sess == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		t.sess = dg
	}
	return t, nil
}

// Name identifies the transport in logs.
func (t *Transport) Name() string { return "discord" }

// Send posts the message as an embed with a severity color.
func (t *Transport) Send(ctx context.Context, msg notify.Message) error {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Text,
		Color:       colorInt(notify.SeverityColor(msg.Severity)),
		Footer:      &discordgo.MessageEmbedFooter{Text: msg.Type},
	}
	if _, err := t.sess.ChannelMessageSendEmbed(t.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}

// colorInt converts a "#rrggbb" hint to the integer Discord expects.
func colorInt(hex string) int {
	n, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return int(n)
}
