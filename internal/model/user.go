// Package model holds the Helix records returned by the client and the
// response envelope they arrive in.
package model

import (
	"strconv"
	"strings"
	"time"
)

// User is a Twitch account as returned by GET /users.
type User struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name"`
	Type            string    `json:"type"`
	BroadcasterType string    `json:"broadcaster_type"`
	Description     string    `json:"description"`
	ProfileImageURL string    `json:"profile_image_url"`
	OfflineImageURL string    `json:"offline_image_url"`
	ViewCount       int       `json:"view_count"`
	Email           string    `json:"email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// LoginKey is the case-folded login used to match users to lookup keys.
func (u User) LoginKey() string {
	return NormalizeLogin(u.Login)
}

// IDKey is the id used to match users to lookup keys.
func (u User) IDKey() string {
	return u.ID
}

// IsPartner reports whether the account is a Twitch partner.
func (u *User) IsPartner() bool {
	return u != nil && u.BroadcasterType == "partner"
}

// NormalizeLogin folds a login name the way Twitch compares them.
func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
