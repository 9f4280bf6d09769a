package zora

import "strconv"

// Platform names social accounts attached to a creator profile. The
// enumeration order in Platforms is part of the classification contract:
// downstream reason strings depend on which platform matches first.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformFarcaster Platform = "farcaster"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
)

var Platforms = []Platform{PlatformTwitter, PlatformFarcaster, PlatformTikTok, PlatformInstagram}

// DisplayName is the label used in alert reasons and log lines.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTwitter:
		return "X"
	case PlatformFarcaster:
		return "Farcaster"
	case PlatformTikTok:
		return "TikTok"
	case PlatformInstagram:
		return "Instagram"
	}
	return string(p)
}

type SocialAccount struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	// nil when the indexer has no count for this platform; zero is a real count
	FollowerCount *int64 `json:"followerCount"`
}

type SocialAccounts struct {
	Farcaster *SocialAccount `json:"farcaster"`
	Twitter   *SocialAccount `json:"twitter"`
	TikTok    *SocialAccount `json:"tiktok"`
	Instagram *SocialAccount `json:"instagram"`
}

func (sa *SocialAccounts) Account(p Platform) *SocialAccount {
	if sa == nil {
		return nil
	}
	switch p {
	case PlatformTwitter:
		return sa.Twitter
	case PlatformFarcaster:
		return sa.Farcaster
	case PlatformTikTok:
		return sa.TikTok
	case PlatformInstagram:
		return sa.Instagram
	}
	return nil
}

type CreatedCoin struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	// decimal string as delivered by the indexer
	MarketCap string `json:"marketCap"`
}

// MarketCapValue parses the decimal market cap; unparsable values count as zero.
func (c *CreatedCoin) MarketCapValue() float64 {
	v, err := strconv.ParseFloat(c.MarketCap, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

type EdgeCount struct {
	Count int64 `json:"count"`
}

type CoinEdge struct {
	Node CreatedCoin `json:"node"`
}

type CoinConnection struct {
	Edges []CoinEdge `json:"edges"`
}

type CreatorProfile struct {
	ID             string          `json:"id"`
	FollowedEdges  EdgeCount       `json:"followedEdges"`
	Username       string          `json:"username"`
	SocialAccounts *SocialAccounts `json:"socialAccounts"`
	CreatedCoins   CoinConnection  `json:"createdCoins"`
}

// Creator is one ingested on-chain profile, valid for a single poll cycle.
type Creator struct {
	Address   string         `json:"address"`
	Name      string         `json:"name"`
	CreatedAt string         `json:"createdAt"`
	Profile   CreatorProfile `json:"creatorProfile"`
}

// MaxMarketCap returns the largest market cap among the creator's coins.
func (c *Creator) MaxMarketCap() float64 {
	var max float64
	for _, e := range c.Profile.CreatedCoins.Edges {
		if v := e.Node.MarketCapValue(); v > max {
			max = v
		}
	}
	return max
}
