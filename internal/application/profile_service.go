package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vidtube/backend/internal/domain/entity"
	repo "github.com/vidtube/backend/internal/domain/repository"
)

// ProfileService serves channel profiles, watch history and account updates.
// The aggregation endpoints are pure reads composed from the three stores; no
// cross-store transaction spans them.
type ProfileService struct {
	Users         repo.UserRepository
	Subscriptions repo.SubscriptionRepository
	Videos        repo.VideoRepository
	Media         MediaUploader
	Index         *ChannelIndex
	Logger        *logrus.Logger
}

func NewProfileService(users repo.UserRepository, subs repo.SubscriptionRepository, videos repo.VideoRepository, media MediaUploader, index *ChannelIndex, logger *logrus.Logger) *ProfileService {
	return &ProfileService{Users: users, Subscriptions: subs, Videos: videos, Media: media, Index: index, Logger: logger}
}

// GetChannelProfile aggregates subscriber counts and the viewer's own
// subscription flag for one channel. viewerID may be empty (anonymous),
// in which case IsSubscribed is always false.
func (s *ProfileService) GetChannelProfile(ctx context.Context, viewerID, channelUsername string) (entity.ChannelProfile, error) {
	channelUsername = strings.ToLower(strings.TrimSpace(channelUsername))
	if channelUsername == "" {
		return entity.ChannelProfile{}, NewValidation("username is required")
	}

	u, err := s.Users.GetByUsername(channelUsername)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return entity.ChannelProfile{}, NewNotFound("channel does not exist")
		}
		return entity.ChannelProfile{}, NewInternal("failed to look up channel")
	}

	subscribers, err := s.Subscriptions.CountSubscribers(u.ID)
	if err != nil {
		return entity.ChannelProfile{}, NewInternal("failed to count subscribers")
	}
	subscribedTo, err := s.Subscriptions.CountSubscribedTo(u.ID)
	if err != nil {
		return entity.ChannelProfile{}, NewInternal("failed to count subscriptions")
	}
	isSubscribed := false
	if viewerID != "" {
		if isSubscribed, err = s.Subscriptions.Exists(viewerID, u.ID); err != nil {
			return entity.ChannelProfile{}, NewInternal("failed to check subscription")
		}
	}

	return entity.ChannelProfile{
		Fullname:                 u.Fullname,
		Username:                 u.Username,
		Email:                    u.Email,
		AvatarURL:                u.AvatarURL,
		CoverImageURL:            u.CoverImageURL,
		SubscribersCount:         subscribers,
		ChannelSubscribedToCount: subscribedTo,
		IsSubscribed:             isSubscribed,
	}, nil
}

// GetWatchHistory returns the user's denormalized watch history, most recent
// first. An empty history is an empty slice, never an error.
func (s *ProfileService) GetWatchHistory(ctx context.Context, userID string) ([]entity.VideoView, error) {
	views, err := s.Videos.ListWatchHistory(userID)
	if err != nil {
		return nil, NewInternal("failed to load watch history")
	}
	if views == nil {
		views = []entity.VideoView{}
	}
	return views, nil
}

// RecordWatch upserts a watch-history entry; re-watching refreshes its
// position.
func (s *ProfileService) RecordWatch(ctx context.Context, userID, videoID string) error {
	if _, err := s.Videos.GetByID(videoID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("video does not exist")
		}
		return NewInternal("failed to look up video")
	}
	if err := s.Videos.UpsertWatchEvent(userID, videoID); err != nil {
		return NewInternal("failed to record watch event")
	}
	return nil
}

// ToggleSubscription flips the subscriber→channel edge: subscribe when absent,
// unsubscribe when present. Returns the resulting subscribed state.
func (s *ProfileService) ToggleSubscription(ctx context.Context, subscriberID, channelUsername string) (bool, error) {
	channelUsername = strings.ToLower(strings.TrimSpace(channelUsername))
	if channelUsername == "" {
		return false, NewValidation("username is required")
	}

	channel, err := s.Users.GetByUsername(channelUsername)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, NewNotFound("channel does not exist")
		}
		return false, NewInternal("failed to look up channel")
	}
	if channel.ID == subscriberID {
		return false, NewValidation("cannot subscribe to your own channel")
	}

	exists, err := s.Subscriptions.Exists(subscriberID, channel.ID)
	if err != nil {
		return false, NewInternal("failed to check subscription")
	}
	if exists {
		if err := s.Subscriptions.Delete(subscriberID, channel.ID); err != nil {
			return false, NewInternal("failed to unsubscribe")
		}
		return false, nil
	}
	if err := s.Subscriptions.Create(subscriberID, channel.ID); err != nil {
		// a concurrent subscribe already created the edge
		if errors.Is(err, repo.ErrDuplicate) {
			return true, nil
		}
		return false, NewInternal("failed to subscribe")
	}
	return true, nil
}

// GetCurrentUser returns the sanitized account of the authenticated user.
func (s *ProfileService) GetCurrentUser(ctx context.Context, userID string) (entity.Sanitized, error) {
	u, err := s.Users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return entity.Sanitized{}, NewNotFound("user does not exist")
		}
		return entity.Sanitized{}, NewInternal("failed to look up user")
	}
	return u.Sanitize(), nil
}

// UpdateAccount changes fullname and/or email; empty inputs keep the current
// values.
func (s *ProfileService) UpdateAccount(ctx context.Context, userID, fullname, email string) (entity.Sanitized, error) {
	fullname = strings.TrimSpace(fullname)
	email = strings.TrimSpace(email)
	if fullname == "" && email == "" {
		return entity.Sanitized{}, NewValidation("nothing to update")
	}

	u, err := s.Users.UpdateProfile(userID, fullname, email)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return entity.Sanitized{}, NewNotFound("user does not exist")
		case errors.Is(err, repo.ErrDuplicate):
			return entity.Sanitized{}, NewConflict("email already in use")
		}
		return entity.Sanitized{}, NewInternal("failed to update account")
	}

	s.Index.IndexChannel(ctx, u)
	return u.Sanitize(), nil
}

// UpdateAvatar uploads the new avatar and stores its URL.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, f FileUpload) (string, error) {
	return s.updateImage(ctx, userID, f, "avatars", s.Users.UpdateAvatarURL)
}

// UpdateCoverImage uploads the new cover image and stores its URL.
func (s *ProfileService) UpdateCoverImage(ctx context.Context, userID string, f FileUpload) (string, error) {
	return s.updateImage(ctx, userID, f, "covers", s.Users.UpdateCoverImageURL)
}

func (s *ProfileService) updateImage(ctx context.Context, userID string, f FileUpload, kind string, persist func(id, url string) error) (string, error) {
	u, err := s.Users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", NewNotFound("user does not exist")
		}
		return "", NewInternal("failed to look up user")
	}

	url, err := s.Media.UploadImage(ctx, kind, u.ID, f)
	if err != nil {
		return "", NewValidation("image file is required")
	}
	if err := persist(u.ID, url); err != nil {
		return "", NewInternal("failed to update image")
	}

	switch kind {
	case "avatars":
		u.AvatarURL = url
	case "covers":
		u.CoverImageURL = url
	}
	s.Index.IndexChannel(ctx, u)
	return url, nil
}

// SearchChannels queries the Elasticsearch channel index.
func (s *ProfileService) SearchChannels(ctx context.Context, q string, size int) ([]map[string]any, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, NewValidation("query is required")
	}
	hits, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, NewInternal("channel search failed")
	}
	return hits, nil
}
