package model

import "time"

// Follow is one follow relationship as returned by GET /users/follows.
// Pages are ordered by FollowedAt, most recent first.
type Follow struct {
	FromID     string    `json:"from_id"`
	FromLogin  string    `json:"from_login"`
	FromName   string    `json:"from_name"`
	ToID       string    `json:"to_id"`
	ToLogin    string    `json:"to_login"`
	ToName     string    `json:"to_name"`
	FollowedAt time.Time `json:"followed_at"`
}

// Pagination carries the cursor for the next page. An empty cursor means
// there are no further pages.
type Pagination struct {
	Cursor string `json:"cursor,omitempty"`
}

// Response is the envelope every Helix list endpoint answers with.
type Response[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
	Total      int        `json:"total,omitempty"`
}
