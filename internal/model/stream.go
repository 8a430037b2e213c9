package model

import (
	"strings"
	"time"
)

// Stream is a live broadcast as returned by GET /streams. Helix only lists
// live streams; an offline channel has no record.
type Stream struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name"`
	GameID       string    `json:"game_id"`
	GameName     string    `json:"game_name"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Tags         []string  `json:"tags,omitempty"`
	ViewerCount  int       `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	Language     string    `json:"language"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsMature     bool      `json:"is_mature"`
}

// IsLive reports whether the record describes a running broadcast.
func (s *Stream) IsLive() bool {
	return s != nil && s.Type == "live"
}

// Uptime returns how long the stream has been running at now.
func (s *Stream) Uptime(now time.Time) time.Duration {
	if s == nil || s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Thumbnail fills the {width}x{height} template of ThumbnailURL.
func (s *Stream) Thumbnail(width, height int) string {
	r := strings.NewReplacer("{width}", itoa(width), "{height}", itoa(height))
	return r.Replace(s.ThumbnailURL)
}
