package repository

import "github.com/vidtube/backend/internal/domain/entity"

// VideoRepository defines video and watch-history operations.
type VideoRepository interface {
	GetByID(id string) (*entity.Video, error)
	Create(v *entity.Video) error
	// ListWatchHistory returns the user's watch history most recent first,
	// each entry joined with its owner summary. Empty history yields an
	// empty slice.
	ListWatchHistory(userID string) ([]entity.VideoView, error)
	// UpsertWatchEvent records that the user watched the video now,
	// refreshing watched_at on a re-watch.
	UpsertWatchEvent(userID, videoID string) error
}
