package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/domain/entity"
	repo "github.com/vidtube/backend/internal/domain/repository"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func (r *VideoRepository) GetByID(id string) (*entity.Video, error) {
	ctx := context.Background()
	v := &entity.Video{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, title, description, video_url, thumbnail_url,
		       duration_seconds, views, is_published, created_at
		FROM videos
		WHERE id = $1
	`, id)
	if err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL,
		&v.ThumbnailURL, &v.DurationSeconds, &v.Views, &v.IsPublished, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *VideoRepository) Create(v *entity.Video) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration_seconds, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, views, created_at
	`, v.OwnerID, v.Title, v.Description, v.VideoURL, v.ThumbnailURL, v.DurationSeconds, v.IsPublished)
	return row.Scan(&v.ID, &v.Views, &v.CreatedAt)
}

// ListWatchHistory joins each history row with its video and the owning
// channel summary, most recently watched first.
func (r *VideoRepository) ListWatchHistory(userID string) ([]entity.VideoView, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.duration_seconds, v.views,
		       u.fullname, u.username, u.avatar_url,
		       wh.watched_at
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		JOIN users u ON u.id = v.owner_id
		WHERE wh.user_id = $1
		ORDER BY wh.watched_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]entity.VideoView, 0)
	for rows.Next() {
		var vv entity.VideoView
		if err := rows.Scan(&vv.ID, &vv.Title, &vv.Description, &vv.VideoURL, &vv.ThumbnailURL,
			&vv.DurationSeconds, &vv.Views,
			&vv.Owner.Fullname, &vv.Owner.Username, &vv.Owner.AvatarURL,
			&vv.WatchedAt); err != nil {
			return nil, err
		}
		views = append(views, vv)
	}
	return views, rows.Err()
}

func (r *VideoRepository) UpsertWatchEvent(userID, videoID string) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO watch_history (user_id, video_id, watched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = now()
	`, userID, videoID)
	return err
}

var _ repo.VideoRepository = (*VideoRepository)(nil)
