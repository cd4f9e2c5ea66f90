package entity

import "time"

// Subscription is the directed edge "subscriber follows channel". Both ends
// reference users; (subscriber, channel) pairs are unique.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// ChannelProfile is the aggregated public view of a channel.
type ChannelProfile struct {
	Fullname                 string `json:"fullname"`
	Username                 string `json:"username"`
	Email                    string `json:"email"`
	AvatarURL                string `json:"avatar_url"`
	CoverImageURL            string `json:"cover_image_url,omitempty"`
	SubscribersCount         int64  `json:"subscribers_count"`
	ChannelSubscribedToCount int64  `json:"channel_subscribed_to_count"`
	IsSubscribed             bool   `json:"is_subscribed"`
}
