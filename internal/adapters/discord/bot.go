package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
	"eventplanner/internal/ports/output"
	pkgdiscord "eventplanner/pkg/discord"
)

var _ output.NotificationSink = (*Bot)(nil)

// ErrNoChannel is returned for role broadcasts without a configured channel.
var ErrNoChannel = errors.New("discord: no channel configured for role")

// messenger is the part of *discordgo.Session the bot delivers through.
type messenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// BotConfig maps role broadcasts to the channels they are posted in.
type BotConfig struct {
	Token        string
	RoleChannels map[domain.Role]string
	Logger       *slog.Logger
}

// Bot delivers notifications as Discord messages: direct messages for
// single users, channel posts for role broadcasts.
type Bot struct {
	session      *discordgo.Session
	messenger    messenger
	roleChannels map[domain.Role]string
	logger       *slog.Logger
}

func NewBot(cfg BotConfig) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	bot := newBot(s, cfg.RoleChannels, cfg.Logger)
	bot.session = s
	return bot, nil
}

func newBot(m messenger, roleChannels map[domain.Role]string, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	channels := make(map[domain.Role]string, len(roleChannels))
	for role, id := range roleChannels {
		if id != "" {
			channels[role] = id
		}
	}
	return &Bot{messenger: m, roleChannels: channels, logger: logger}
}

// Open connects the gateway so the bot shows as online.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	b.logger.Info("discord session opened")
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Dispatch sends one notification. Users without a linked Discord account
// are skipped.
func (b *Bot) Dispatch(ctx context.Context, n entities.Notification) error {
	channelID, err := b.channelFor(ctx, n.Recipient)
	if err != nil {
		return err
	}
	if channelID == "" {
		b.logger.Debug("recipient has no discord account", "type", n.Type, "recipient", n.Recipient.String())
		return nil
	}

	_, err = b.messenger.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{pkgdiscord.BuildNotificationEmbed(n)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func (b *Bot) channelFor(ctx context.Context, r entities.Recipient) (string, error) {
	if r.User != nil {
		if r.User.DiscordID == "" {
			return "", nil
		}
		ch, err := b.messenger.UserChannelCreate(r.User.DiscordID, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("create DM channel: %w", err)
		}
		if ch == nil {
			return "", errors.New("create DM channel: no channel returned")
		}
		return ch.ID, nil
	}
	id, ok := b.roleChannels[r.Role]
	if !ok {
		return "", fmt.Errorf("%w %s", ErrNoChannel, r.Role)
	}
	return id, nil
}
