package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/leufoulens/zora-trenches/zora"
)

// Telegram rejects messages over 4096 chars; leave headroom for splitting.
const maxMessageLen = 4000

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

var markdownStripper = strings.NewReplacer(
	"`", "", "*", "", "_", "", "[", "", "]", "", "(", "", ")", "",
)

func stripMarkdown(text string) string {
	return markdownStripper.Replace(text)
}

func followerIndicator(count int64) string {
	switch {
	case count < 50:
		return "🔴"
	case count < 1000:
		return "🟡"
	default:
		return "🟢"
	}
}

var platformBaseURLs = map[zora.Platform]string{
	zora.PlatformTwitter:   "https://x.com",
	zora.PlatformFarcaster: "https://warpcast.com",
}

const zoraBaseURL = "https://zora.co"

// usernames inside markdown links stay unescaped or the link text shows the
// backslashes
func usernameLink(username, baseURL string) string {
	return fmt.Sprintf("[@%s](%s/%s)", username, baseURL, username)
}

func formatCreatedAt(createdAt string) string {
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		return t.UTC().Format("Jan 2, 2006 15:04:05 MST")
	}
	return createdAt
}

// creatorMessage renders the alert body shared by both tiers. Live follower
// counts come through the caches; an unavailable count just drops off the
// line rather than blocking the send.
func (c *Client) creatorMessage(ctx context.Context, creator *zora.Creator) string {
	profile := &creator.Profile
	native := profile.FollowedEdges.Count

	var b strings.Builder
	b.WriteString("NEW CREATOR\n\n")
	fmt.Fprintf(&b, "Name: %s\n", escapeMarkdown(creator.Name))
	fmt.Fprintf(&b, "Address: `%s`\n", creator.Address)
	fmt.Fprintf(&b, "Followers: %d %s\n", native, followerIndicator(native))
	fmt.Fprintf(&b, "Created: %s\n", escapeMarkdown(formatCreatedAt(creator.CreatedAt)))
	if profile.Username != "" {
		fmt.Fprintf(&b, "Username: %s\n", usernameLink(profile.Username, zoraBaseURL))
	}

	for _, p := range []zora.Platform{zora.PlatformFarcaster, zora.PlatformTwitter} {
		account := profile.SocialAccounts.Account(p)
		if account == nil || (account.DisplayName == "" && account.Username == "") {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", p.DisplayName())
		if account.DisplayName != "" {
			fmt.Fprintf(&b, "  Name: %s\n", escapeMarkdown(account.DisplayName))
		}
		if account.Username != "" {
			link := usernameLink(account.Username, platformBaseURLs[p])
			if count, ok := c.liveFollowers(ctx, p, account); ok {
				fmt.Fprintf(&b, "  %s (%d followers)\n", link, count)
			} else {
				fmt.Fprintf(&b, "  %s\n", link)
			}
		}
	}

	msg := b.String()
	if native >= c.HighFollowers {
		msg = "HIGH VALUE CREATOR\n\n" + msg
	}
	return msg
}

func (c *Client) liveFollowers(ctx context.Context, p zora.Platform, account *zora.SocialAccount) (int64, bool) {
	if account.FollowerCount != nil {
		return *account.FollowerCount, true
	}
	fc, ok := c.Followers[p]
	if !ok {
		return 0, false
	}
	return fc.FollowerCount(ctx, account.Username)
}

func (c *Client) creatorKeyboard(creator *zora.Creator) tgbotapi.InlineKeyboardMarkup {
	address := creator.Address
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Based Bot",
				fmt.Sprintf("https://t.me/based_eth_bot?start=r_worldfinaltour_b_%s", address)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("DexScreener",
				fmt.Sprintf("https://dexscreener.com/base/%s", address)),
		),
	}
	if tw := creator.Profile.SocialAccounts.Account(zora.PlatformTwitter); tw != nil && tw.Username != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Blacklist @%s", tw.Username),
				blacklistCallbackPrefix+tw.Username),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// splitMessage breaks a long message on line boundaries, falling back to
// word boundaries for a single oversized line.
func splitMessage(message string, maxLen int) []string {
	if len(message) <= maxLen {
		return []string{message}
	}
	var chunks []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}
	for _, line := range strings.Split(message, "\n") {
		if current.Len()+len(line)+1 > maxLen {
			flush()
			if len(line) > maxLen {
				for _, word := range strings.Fields(line) {
					if current.Len()+len(word)+1 > maxLen {
						flush()
					}
					current.WriteString(word)
					current.WriteString(" ")
				}
				continue
			}
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()
	return chunks
}
