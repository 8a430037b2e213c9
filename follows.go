package helix

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Guliveer/twitch-helix-go/internal/batch"
	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/model"
)

// GetFollowDate returns when followerID started following followeeID, or nil
// if they do not follow them. The follower's follow list is read page by
// page, most recent first, up to the configured page limit.
func (c *Client) GetFollowDate(ctx context.Context, followerID, followeeID string) (*time.Time, error) {
	followerID = strings.TrimSpace(followerID)
	followeeID = strings.TrimSpace(followeeID)
	if followerID == "" || followeeID == "" {
		return nil, nil
	}

	edge, err := c.follows.ScanUntil(ctx, followerID, func(f model.Follow) bool {
		return f.ToID == followeeID
	}, c.followsPage)
	if err != nil || edge == nil {
		return nil, err
	}
	followedAt := edge.FollowedAt
	return &followedAt, nil
}

func (c *Client) followsPage(ctx context.Context, fromID, cursor string) (*batch.Page[model.Follow], error) {
	params := url.Values{
		"from_id": {fromID},
		"first":   {strconv.Itoa(constants.FollowsPageSize)},
	}
	if cursor != "" {
		params.Set("after", cursor)
	}
	resp, err := getList[model.Follow](ctx, c, constants.PathFollows, params)
	if err != nil || resp == nil {
		return nil, err
	}
	return &batch.Page[model.Follow]{Items: resp.Data, Cursor: resp.Pagination.Cursor}, nil
}
