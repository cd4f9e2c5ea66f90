package entity

import "time"

// Video is owned by a channel (a User). Only a subset of fields is projected
// into watch-history views.
type Video struct {
	ID              string
	OwnerID         string
	Title           string
	Description     string
	VideoURL        string
	ThumbnailURL    string
	DurationSeconds int
	Views           int64
	IsPublished     bool
	CreatedAt       time.Time
}

// OwnerSummary is the denormalized channel summary attached to a video view.
type OwnerSummary struct {
	Fullname  string `json:"fullname"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// VideoView is a watch-history entry: the video plus its owner summary and the
// time the viewer last watched it.
type VideoView struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	VideoURL        string       `json:"video_url"`
	ThumbnailURL    string       `json:"thumbnail_url"`
	DurationSeconds int          `json:"duration_seconds"`
	Views           int64        `json:"views"`
	Owner           OwnerSummary `json:"owner"`
	WatchedAt       time.Time    `json:"watched_at"`
}
