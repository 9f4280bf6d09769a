package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/leufoulens/zora-trenches/monitor/memberstore"
)

const blacklistCallbackPrefix = "bl:"

// RunBot long-polls for operator commands until ctx is canceled.
func (c *Client) RunBot(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.Bot.GetUpdatesChan(u)
	c.Logger.Info("telegram bot listening for commands")
	for {
		select {
		case <-ctx.Done():
			c.Bot.StopReceivingUpdates()
			c.Logger.Info("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			c.handleUpdate(ctx, update)
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		c.handleCallback(ctx, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	chatID := msg.Chat.ID
	args := msg.CommandArguments()
	switch msg.Command() {
	case "add_alpha_list":
		c.cmdAddAlpha(ctx, chatID, args)
	case "alpha_list":
		c.cmdListAlpha(ctx, chatID)
	case "remove_alpha_user":
		c.cmdRemove(ctx, chatID, memberstore.SetAlpha, "alpha list", args)
	case "add_blacklist":
		c.cmdAddBlacklist(ctx, chatID, args)
	case "blacklist":
		c.cmdListBlacklist(ctx, chatID)
	case "remove_blacklist":
		c.cmdRemove(ctx, chatID, memberstore.SetBlacklist, "blacklist", args)
	}
}

// one-tap blacklist button on delivered alerts
func (c *Client) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if !strings.HasPrefix(cb.Data, blacklistCallbackPrefix) {
		return
	}
	handle := memberstore.Normalize(strings.TrimPrefix(cb.Data, blacklistCallbackPrefix))
	answer := fmt.Sprintf("@%s blacklisted", handle)
	if added, _ := c.Members.Add(ctx, memberstore.SetBlacklist, handle); added == 0 {
		answer = fmt.Sprintf("@%s was already blacklisted", handle)
	}
	c.Logger.Info("blacklist button pressed", "handle", handle)
	if _, err := c.Bot.Request(tgbotapi.NewCallback(cb.ID, answer)); err != nil {
		c.Logger.Warn("callback answer failed", "err", err)
	}
}

// alphaEntry is one parsed line of the batch form: "username" or
// "username (free text description)".
type alphaEntry struct {
	Username string
	Note     string
}

func parseAlphaLines(args string) []alphaEntry {
	var entries []alphaEntry
	for _, line := range strings.Split(args, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if open := strings.Index(line, "("); open >= 0 && strings.HasSuffix(line, ")") {
			username := memberstore.Normalize(strings.TrimPrefix(strings.TrimSpace(line[:open]), "@"))
			note := strings.TrimSpace(line[open+1 : len(line)-1])
			if username != "" {
				entries = append(entries, alphaEntry{Username: username, Note: note})
			}
			continue
		}
		// bare line: any number of whitespace-separated usernames
		for _, f := range strings.Fields(line) {
			username := memberstore.Normalize(strings.TrimPrefix(f, "@"))
			if username != "" {
				entries = append(entries, alphaEntry{Username: username})
			}
		}
	}
	return entries
}

func (c *Client) cmdAddAlpha(ctx context.Context, chatID int64, args string) {
	entries := parseAlphaLines(args)
	if len(entries) == 0 {
		c.reply(ctx, chatID,
			"Usage: /add_alpha_list username1 username2 ...\n"+
				"or one per line with a description:\n"+
				"/add_alpha_list\nufo (early zora whale)\nwakeupremember")
		return
	}

	var added []string
	for _, e := range entries {
		if e.Note != "" {
			c.Members.AddWithNote(ctx, memberstore.SetAlpha, e.Username, e.Note)
			added = append(added, e.Username)
			continue
		}
		if n, _ := c.Members.Add(ctx, memberstore.SetAlpha, e.Username); n > 0 {
			added = append(added, e.Username)
		}
	}
	total, _ := c.Members.Count(ctx, memberstore.SetAlpha)

	var b strings.Builder
	fmt.Fprintf(&b, "Added or updated %d alpha users (total %d)\n", len(added), total)
	for _, u := range added {
		fmt.Fprintf(&b, "• %s\n", u)
	}
	c.reply(ctx, chatID, b.String())
}

func (c *Client) cmdListAlpha(ctx context.Context, chatID int64) {
	entries, _ := c.Members.List(ctx, memberstore.SetAlpha)
	if len(entries) == 0 {
		c.reply(ctx, chatID, "Alpha list is empty")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Alpha List (%d users):\n\n", len(entries))
	for i, e := range entries {
		if e.Note != "" {
			fmt.Fprintf(&b, "%d. %s — %s\n", i+1, e.Name, e.Note)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e.Name)
		}
	}
	c.reply(ctx, chatID, b.String())
}

func (c *Client) cmdAddBlacklist(ctx context.Context, chatID int64, args string) {
	var handles []string
	for _, f := range strings.Fields(args) {
		if h := memberstore.Normalize(strings.TrimPrefix(f, "@")); h != "" {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		c.reply(ctx, chatID, "Usage: /add_blacklist handle1 handle2 ...")
		return
	}
	added, _ := c.Members.Add(ctx, memberstore.SetBlacklist, handles...)
	total, _ := c.Members.Count(ctx, memberstore.SetBlacklist)
	c.reply(ctx, chatID, fmt.Sprintf("Added %d new handles to blacklist (total %d)", added, total))
}

func (c *Client) cmdListBlacklist(ctx context.Context, chatID int64) {
	entries, _ := c.Members.List(ctx, memberstore.SetBlacklist)
	if len(entries) == 0 {
		c.reply(ctx, chatID, "Blacklist is empty")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Blacklist (%d handles):\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Name)
	}
	c.reply(ctx, chatID, b.String())
}

func (c *Client) cmdRemove(ctx context.Context, chatID int64, set, label, args string) {
	username := memberstore.Normalize(strings.TrimPrefix(strings.TrimSpace(args), "@"))
	if username == "" {
		c.reply(ctx, chatID, fmt.Sprintf("Usage: provide a username to remove from the %s", label))
		return
	}
	removed, _ := c.Members.Remove(ctx, set, username)
	total, _ := c.Members.Count(ctx, set)
	if removed {
		c.reply(ctx, chatID, fmt.Sprintf("Removed %s from the %s (%d remaining)", username, label, total))
	} else {
		c.reply(ctx, chatID, fmt.Sprintf("%s is not in the %s", username, label))
	}
}

// reply sends an unformatted operator reply, split when long.
func (c *Client) reply(ctx context.Context, chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if err := c.Limiter.Wait(ctx); err != nil {
			return
		}
		if _, err := c.Bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			c.Logger.Warn("command reply failed", "err", err)
			return
		}
	}
}
