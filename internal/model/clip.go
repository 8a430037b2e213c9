package model

import "time"

// Clip is a clip as returned by GET /clips.
type Clip struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	EmbedURL        string    `json:"embed_url"`
	BroadcasterID   string    `json:"broadcaster_id"`
	BroadcasterName string    `json:"broadcaster_name"`
	CreatorID       string    `json:"creator_id"`
	CreatorName     string    `json:"creator_name"`
	VideoID         string    `json:"video_id"`
	GameID          string    `json:"game_id"`
	Language        string    `json:"language"`
	Title           string    `json:"title"`
	ViewCount       int       `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Duration        float64   `json:"duration"`
	VODOffset       *int      `json:"vod_offset"`
	IsFeatured      bool      `json:"is_featured"`
}

// IDKey is the id used to match clips to lookup keys. Clip slugs are
// case-sensitive.
func (c Clip) IDKey() string {
	return c.ID
}

// Length returns the clip duration.
func (c *Clip) Length() time.Duration {
	return time.Duration(c.Duration * float64(time.Second))
}
