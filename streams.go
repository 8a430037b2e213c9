package helix

import (
	"context"
	"net/url"
	"strings"

	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/model"
)

// GetStreamInfoByID returns the live stream of the broadcaster with the
// given user id, or nil if they are offline.
func (c *Client) GetStreamInfoByID(ctx context.Context, userID string) (*Stream, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	return c.liveStream(ctx, url.Values{"user_id": {userID}}, func(s *model.Stream) bool {
		return s.UserID == userID
	})
}

// GetStreamInfoByUsername returns the live stream of the broadcaster with
// the given login, or nil if they are offline.
func (c *Client) GetStreamInfoByUsername(ctx context.Context, login string) (*Stream, error) {
	login = model.NormalizeLogin(login)
	if login == "" {
		return nil, nil
	}
	return c.liveStream(ctx, url.Values{"user_login": {login}}, func(s *model.Stream) bool {
		return model.NormalizeLogin(s.UserLogin) == login
	})
}

func (c *Client) liveStream(ctx context.Context, params url.Values, match func(*model.Stream) bool) (*Stream, error) {
	params.Set("first", "1")
	resp, err := getList[model.Stream](ctx, c, constants.PathStreams, params)
	if err != nil || resp == nil {
		return nil, err
	}
	for i := range resp.Data {
		s := &resp.Data[i]
		if match(s) && s.IsLive() {
			return s, nil
		}
	}
	return nil, nil
}
