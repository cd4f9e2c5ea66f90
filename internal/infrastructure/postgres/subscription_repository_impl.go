package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/vidtube/backend/internal/domain/repository"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) CountSubscribers(channelID string) (int64, error) {
	ctx := context.Background()
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM subscriptions WHERE channel_id = $1
	`, channelID).Scan(&n)
	return n, err
}

func (r *SubscriptionRepository) CountSubscribedTo(subscriberID string) (int64, error) {
	ctx := context.Background()
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM subscriptions WHERE subscriber_id = $1
	`, subscriberID).Scan(&n)
	return n, err
}

func (r *SubscriptionRepository) Exists(subscriberID, channelID string) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
		)
	`, subscriberID, channelID).Scan(&exists)
	return exists, err
}

func (r *SubscriptionRepository) Create(subscriberID, channelID string) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscriptions (subscriber_id, channel_id)
		VALUES ($1, $2)
	`, subscriberID, channelID)
	return translateUnique(err)
}

func (r *SubscriptionRepository) Delete(subscriberID, channelID string) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
	`, subscriberID, channelID)
	return err
}

var _ repo.SubscriptionRepository = (*SubscriptionRepository)(nil)
