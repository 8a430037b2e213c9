package helix

import (
	"context"

	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/model"
)

// GetClipByID returns the clip with the given id (its slug), or nil if it
// does not exist. Clip ids are case-sensitive.
func (c *Client) GetClipByID(ctx context.Context, id string) (*Clip, error) {
	return first(c.clips.Resolve(ctx, []string{id}))
}

// GetClipsByIDs looks up several clips at once. The result has one entry
// per id, in the same order, with nil for clips that do not exist.
func (c *Client) GetClipsByIDs(ctx context.Context, ids []string) ([]*Clip, error) {
	return c.clips.Resolve(ctx, ids)
}

func (c *Client) fetchClips(ctx context.Context, ids []string) ([]model.Clip, error) {
	resp, err := getList[model.Clip](ctx, c, constants.PathClips, map[string][]string{"id": ids})
	if err != nil || resp == nil {
		return nil, err
	}
	return resp.Data, nil
}
