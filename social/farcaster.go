package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const defaultFarcasterHost = "https://client.farcaster.xyz"

// FarcasterClient looks up Farcaster profiles via the public client API.
type FarcasterClient struct {
	Host   string
	Client *http.Client
}

func NewFarcasterClient() *FarcasterClient {
	return &FarcasterClient{
		Host:   defaultFarcasterHost,
		Client: lookupHTTPClient(),
	}
}

type farcasterUserResponse struct {
	Result struct {
		User *struct {
			FollowerCount  int64 `json:"followerCount"`
			FollowingCount int64 `json:"followingCount"`
		} `json:"user"`
	} `json:"result"`
}

func (c *FarcasterClient) UserStats(ctx context.Context, username string) (*UserStats, error) {
	u := c.Host + "/v2/user-by-username?username=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "zora-trenches/1.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("farcaster api request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("farcaster api status %d", resp.StatusCode)
	}

	var body farcasterUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("farcaster api decode: %w", err)
	}
	if body.Result.User == nil {
		return nil, ErrNotFound
	}
	return &UserStats{
		Followers: body.Result.User.FollowerCount,
		Following: body.Result.User.FollowingCount,
	}, nil
}
