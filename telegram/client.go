// Package telegram delivers creator alerts to the general and high chats and
// hosts the operator command surface for the alpha list and blacklist.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/leufoulens/zora-trenches/monitor"
	"github.com/leufoulens/zora-trenches/monitor/followercache"
	"github.com/leufoulens/zora-trenches/monitor/memberstore"
	"github.com/leufoulens/zora-trenches/zora"
)

// VCLookup surfaces notable followers of a profile on high-tier alerts.
type VCLookup interface {
	VCFollowing(ctx context.Context, username string) ([]string, error)
}

type Client struct {
	Bot           *tgbotapi.BotAPI
	GeneralChatID int64
	HighChatID    int64
	Members       memberstore.Store
	Followers     map[zora.Platform]*followercache.FollowerCache
	VC            VCLookup
	HighFollowers int64
	Logger        *slog.Logger
	// Telegram allows ~30 msg/s overall but chats throttle much lower
	Limiter *rate.Limiter
}

var _ monitor.Notifier = (*Client)(nil)

func NewClient(token string, generalChatID, highChatID int64, logger *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting telegram bot: %w", err)
	}
	logger.Info("telegram bot authorized", "username", bot.Self.UserName)
	return &Client{
		Bot:           bot,
		GeneralChatID: generalChatID,
		HighChatID:    highChatID,
		Logger:        logger,
		Limiter:       rate.NewLimiter(rate.Limit(1), 3),
	}, nil
}

func (c *Client) SendGeneral(ctx context.Context, creator *zora.Creator) error {
	text := c.creatorMessage(ctx, creator)
	kb := c.creatorKeyboard(creator)
	if err := c.sendWithFallback(ctx, c.GeneralChatID, text, &kb); err != nil {
		return err
	}
	c.Logger.Info("sent to general chat", "name", creator.Name, "address", creator.Address)
	return nil
}

func (c *Client) SendHigh(ctx context.Context, creator *zora.Creator, reason, note string) error {
	var header strings.Builder
	fmt.Fprintf(&header, "Reason: %s\n", escapeMarkdown(reason))
	if note != "" {
		fmt.Fprintf(&header, "Note: %s\n", escapeMarkdown(note))
	}
	if names := c.vcFollowers(ctx, creator.Profile.Username); len(names) > 0 {
		fmt.Fprintf(&header, "VC following: %s\n", escapeMarkdown(strings.Join(names, ", ")))
	}
	header.WriteString("\n")

	text := header.String() + c.creatorMessage(ctx, creator)
	kb := c.creatorKeyboard(creator)
	if err := c.sendWithFallback(ctx, c.HighChatID, text, &kb); err != nil {
		return err
	}
	c.Logger.Info("sent to high chat", "name", creator.Name, "reason", reason)
	return nil
}

func (c *Client) SendStatus(ctx context.Context, text string) error {
	return c.sendWithFallback(ctx, c.GeneralChatID, escapeMarkdown(text), nil)
}

func (c *Client) vcFollowers(ctx context.Context, username string) []string {
	if c.VC == nil || username == "" {
		return nil
	}
	names, err := c.VC.VCFollowing(ctx, username)
	if err != nil {
		c.Logger.Warn("vc following lookup failed", "username", username, "err", err)
		return nil
	}
	return names
}

// sendWithFallback sends Markdown and retries a single unformatted variant
// when formatting is rejected. Messages over the size limit are split; the
// keyboard rides on the final chunk.
func (c *Client) sendWithFallback(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	chunks := splitMessage(text, maxMessageLen)
	for i, chunk := range chunks {
		var chunkKB *tgbotapi.InlineKeyboardMarkup
		if i == len(chunks)-1 {
			chunkKB = kb
		}
		if err := c.sendOne(ctx, chatID, chunk, chunkKB); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendOne(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	_, err := c.Bot.Send(msg)
	if err == nil {
		return nil
	}
	c.Logger.Warn("markdown send failed, retrying plain", "chat", chatID, "err", err)

	plain := tgbotapi.NewMessage(chatID, stripMarkdown(text))
	plain.DisableWebPagePreview = true
	if kb != nil {
		plain.ReplyMarkup = *kb
	}
	if _, err2 := c.Bot.Send(plain); err2 != nil {
		return fmt.Errorf("plain fallback failed: %w", err2)
	}
	return nil
}
