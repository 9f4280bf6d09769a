package monitor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leufoulens/zora-trenches/monitor/followercache"
	"github.com/leufoulens/zora-trenches/zora"
)

// DefaultHighMarketCap is the created-token market cap (in native currency
// units) above which a creator is escalated regardless of followers.
const DefaultHighMarketCap = 500_000

// Verdict is a classification outcome plus a human-readable reason. Reason
// strings are order-dependent: the first platform to reach the threshold
// names the reason, even if a later platform has more followers.
type Verdict struct {
	High         bool
	Reason       string
	MaxFollowers int64
	Platform     string
}

// Classifier decides whether a creator is high-value. It is deterministic
// given the record and the follower caches; it holds no mutable state.
type Classifier struct {
	HighFollowers int64
	HighMarketCap float64
	// live lookups for platforms whose count is not inline on the record
	Followers map[zora.Platform]*followercache.FollowerCache
}

// Classify applies the decision order: top token market cap, then native
// follower count, then each social platform in fixed enumeration order.
// First match wins. Absent lookups are "no signal", not zero.
func (cl *Classifier) Classify(ctx context.Context, c *zora.Creator) Verdict {
	native := c.Profile.FollowedEdges.Count

	if top := c.MaxMarketCap(); top >= cl.HighMarketCap {
		return Verdict{
			High:         true,
			Reason:       fmt.Sprintf("HIGH TOP TOKEN: $%s", groupDigits(int64(top))),
			MaxFollowers: native,
			Platform:     "Zora",
		}
	}

	if native >= cl.HighFollowers {
		return Verdict{
			High:         true,
			Reason:       fmt.Sprintf("Zora: %s followers", groupDigits(native)),
			MaxFollowers: native,
			Platform:     "Zora",
		}
	}

	maxFollowers := native
	maxPlatform := "Zora"
	for _, p := range zora.Platforms {
		followers, ok := cl.platformFollowers(ctx, c, p)
		if !ok {
			continue
		}
		if followers > maxFollowers {
			maxFollowers = followers
			maxPlatform = p.DisplayName()
		}
		if followers >= cl.HighFollowers {
			return Verdict{
				High:         true,
				Reason:       fmt.Sprintf("%s: %s followers", p.DisplayName(), groupDigits(followers)),
				MaxFollowers: followers,
				Platform:     p.DisplayName(),
			}
		}
	}

	return Verdict{
		Reason:       fmt.Sprintf("Max followers: %s on %s", groupDigits(maxFollowers), maxPlatform),
		MaxFollowers: maxFollowers,
		Platform:     maxPlatform,
	}
}

// platformFollowers resolves one platform signal: inline count when the
// record has one, otherwise a cached live lookup when a client is configured.
func (cl *Classifier) platformFollowers(ctx context.Context, c *zora.Creator, p zora.Platform) (int64, bool) {
	account := c.Profile.SocialAccounts.Account(p)
	if account == nil {
		return 0, false
	}
	if account.FollowerCount != nil {
		return *account.FollowerCount, true
	}
	fc, ok := cl.Followers[p]
	if !ok || account.Username == "" {
		return 0, false
	}
	return fc.FollowerCount(ctx, account.Username)
}

// groupDigits renders n with thousands separators, e.g. 1234567 -> 1,234,567.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
