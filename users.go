package helix

import (
	"context"

	"github.com/Guliveer/twitch-helix-go/internal/batch"
	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/model"
)

// GetTwitchUserByName returns the user with the given login, or nil if no
// such user exists. Logins are matched case-insensitively.
func (c *Client) GetTwitchUserByName(ctx context.Context, name string) (*User, error) {
	return first(c.usersByLogin.Resolve(ctx, []string{name}))
}

// GetTwitchUsersByName looks up several logins at once. The result has one
// entry per name, in the same order, with nil for unknown names.
func (c *Client) GetTwitchUsersByName(ctx context.Context, names []string) ([]*User, error) {
	return c.usersByLogin.Resolve(ctx, names)
}

// GetTwitchUserByID returns the user with the given id, or nil.
func (c *Client) GetTwitchUserByID(ctx context.Context, id string) (*User, error) {
	return first(c.usersByID.Resolve(ctx, []string{id}))
}

// GetTwitchUsersByID looks up several user ids at once, with the same
// ordering guarantees as GetTwitchUsersByName.
func (c *Client) GetTwitchUsersByID(ctx context.Context, ids []string) ([]*User, error) {
	return c.usersByID.Resolve(ctx, ids)
}

func (c *Client) fetchUsers(param string) batch.FetchFunc[model.User] {
	return func(ctx context.Context, keys []string) ([]model.User, error) {
		resp, err := getList[model.User](ctx, c, constants.PathUsers, map[string][]string{param: keys})
		if err != nil || resp == nil {
			return nil, err
		}
		return resp.Data, nil
	}
}

func first[R any](results []*R, err error) (*R, error) {
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return results[0], nil
}
