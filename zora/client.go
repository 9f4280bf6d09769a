package zora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RequestError covers transport-level failures talking to the indexer:
// connection errors, timeouts, and non-200 responses.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("zora request failed (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("zora request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// APIError covers requests the indexer accepted but rejected at the GraphQL
// layer (malformed query, upstream refusal).
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	return "zora api error: " + strings.Join(e.Messages, "; ")
}

// Client talks GraphQL to the Zora universal endpoint.
type Client struct {
	Host   string
	APIKey string
	Client *http.Client
}

const exploreListQuery = `query GetListOfNewCreators {
  exploreList(listType: NEW_CREATORS, first: 10) {
    edges {
      node {
        address
        name
        createdAt
        creatorProfile {
          ... on GraphQLAccountProfile {
            id
            followedEdges {
              count
            }
            username
            socialAccounts {
              farcaster { displayName username followerCount }
              twitter { displayName username followerCount }
              tiktok { displayName username followerCount }
              instagram { displayName username followerCount }
            }
            createdCoins(first: 100) {
              edges {
                node {
                  name
                  address
                  marketCap
                }
              }
            }
          }
        }
      }
    }
  }
}`

const vcFollowingQuery = `query GetVcFollowing($identifier: String!) {
  profile(identifier: $identifier) {
    followersInVcFollowing {
      edges {
        node {
          ... on GraphQLAccountProfile {
            id
            username
          }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "zora-trenches/1.0")
	if c.APIKey != "" {
		req.Header.Set("X-API-KEY", c.APIKey)
	}

	httpClient := c.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return &RequestError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return &APIError{Messages: msgs}
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding data: %w", err)}
		}
	}
	return nil
}

// NewCreators fetches the newest page (up to 10) of creator profiles.
func (c *Client) NewCreators(ctx context.Context) ([]Creator, error) {
	var data struct {
		ExploreList struct {
			Edges []struct {
				Node Creator `json:"node"`
			} `json:"edges"`
		} `json:"exploreList"`
	}
	if err := c.do(ctx, exploreListQuery, nil, &data); err != nil {
		return nil, err
	}
	creators := make([]Creator, 0, len(data.ExploreList.Edges))
	for _, e := range data.ExploreList.Edges {
		creators = append(creators, e.Node)
	}
	return creators, nil
}

// VCFollowing returns usernames of notable accounts following the given
// profile, for display on high-tier alerts.
func (c *Client) VCFollowing(ctx context.Context, username string) ([]string, error) {
	var data struct {
		Profile *struct {
			FollowersInVcFollowing struct {
				Edges []struct {
					Node struct {
						ID       string `json:"id"`
						Username string `json:"username"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"followersInVcFollowing"`
		} `json:"profile"`
	}
	if err := c.do(ctx, vcFollowingQuery, map[string]any{"identifier": username}, &data); err != nil {
		return nil, err
	}
	if data.Profile == nil {
		return nil, nil
	}
	var names []string
	for _, e := range data.Profile.FollowersInVcFollowing.Edges {
		if e.Node.Username != "" {
			names = append(names, e.Node.Username)
		}
	}
	return names, nil
}
