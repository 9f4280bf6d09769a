package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const defaultXHost = "https://api.twitterapi.io"

// XClient looks up X (Twitter) profiles via the twitterapi.io proxy API.
type XClient struct {
	Host   string
	APIKey string
	Client *http.Client
}

func NewXClient(apiKey string) *XClient {
	return &XClient{
		Host:   defaultXHost,
		APIKey: apiKey,
		Client: lookupHTTPClient(),
	}
}

type xUserResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	Data   *struct {
		Followers int64 `json:"followers"`
		Following int64 `json:"following"`
	} `json:"data"`
}

func (c *XClient) UserStats(ctx context.Context, username string) (*UserStats, error) {
	u := c.Host + "/twitter/user/info?userName=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x api request: %w", err)
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
		return nil, fmt.Errorf("x api status %d", resp.StatusCode)
	}

	var body xUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("x api decode: %w", err)
	}
	if body.Status != "success" || body.Data == nil {
		return nil, ErrNotFound
	}
	return &UserStats{
		Followers: body.Data.Followers,
		Following: body.Data.Following,
	}, nil
}
