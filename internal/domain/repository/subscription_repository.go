package repository

// SubscriptionRepository defines subscription-edge operations.
type SubscriptionRepository interface {
	CountSubscribers(channelID string) (int64, error)
	CountSubscribedTo(subscriberID string) (int64, error)
	Exists(subscriberID, channelID string) (bool, error)
	Create(subscriberID, channelID string) error
	Delete(subscriberID, channelID string) error
}
