package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/domain/entity"
	repo "github.com/vidtube/backend/internal/domain/repository"
)

// In-memory repository fakes. They mirror the Postgres implementations'
// contracts (sentinel errors, compare-and-swap rotation, upsert ordering) so
// the services can be exercised without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Username == u.Username || e.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIdentity(identity string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == strings.ToLower(identity) || u.Email == identity {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateRefreshToken(id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *fakeUserRepo) RotateRefreshToken(id, old, new string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.RefreshToken != old {
		return false, nil
	}
	u.RefreshToken = new
	return true, nil
}

func (r *fakeUserRepo) UpdatePassword(id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateProfile(id, fullname, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if email != "" && email != u.Email {
		for _, other := range r.users {
			if other.ID != id && other.Email == email {
				return nil, repo.ErrDuplicate
			}
		}
		u.Email = email
	}
	if fullname != "" {
		u.Fullname = fullname
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateAvatarURL(id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.AvatarURL = url
	return nil
}

func (r *fakeUserRepo) UpdateCoverImageURL(id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.CoverImageURL = url
	return nil
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

type fakeSubscriptionRepo struct {
	mu    sync.Mutex
	edges map[string]map[string]bool // subscriber -> channel
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{edges: map[string]map[string]bool{}}
}

func (r *fakeSubscriptionRepo) CountSubscribers(channelID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, chans := range r.edges {
		if chans[channelID] {
			n++
		}
	}
	return n, nil
}

func (r *fakeSubscriptionRepo) CountSubscribedTo(subscriberID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.edges[subscriberID])), nil
}

func (r *fakeSubscriptionRepo) Exists(subscriberID, channelID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edges[subscriberID][channelID], nil
}

func (r *fakeSubscriptionRepo) Create(subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.edges[subscriberID][channelID] {
		return repo.ErrDuplicate
	}
	if r.edges[subscriberID] == nil {
		r.edges[subscriberID] = map[string]bool{}
	}
	r.edges[subscriberID][channelID] = true
	return nil
}

func (r *fakeSubscriptionRepo) Delete(subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges[subscriberID], channelID)
	return nil
}

var _ repo.SubscriptionRepository = (*fakeSubscriptionRepo)(nil)

type fakeVideoRepo struct {
	mu      sync.Mutex
	videos  map[string]*entity.Video
	owners  map[string]entity.OwnerSummary // owner id -> summary
	history map[string][]entity.VideoView  // user id -> most recent first
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{
		videos:  map[string]*entity.Video{},
		owners:  map[string]entity.OwnerSummary{},
		history: map[string][]entity.VideoView{},
	}
}

func (r *fakeVideoRepo) GetByID(id string) (*entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) Create(v *entity.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == "" {
		v.ID = fmt.Sprintf("video-%d", len(r.videos)+1)
	}
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) ListWatchHistory(userID string) ([]entity.VideoView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := r.history[userID]
	out := make([]entity.VideoView, len(views))
	copy(out, views)
	return out, nil
}

func (r *fakeVideoRepo) UpsertWatchEvent(userID, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return repo.ErrNotFound
	}
	views := r.history[userID]
	for i, view := range views {
		if view.ID == videoID {
			views = append(views[:i], views[i+1:]...)
			break
		}
	}
	view := entity.VideoView{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		VideoURL:        v.VideoURL,
		ThumbnailURL:    v.ThumbnailURL,
		DurationSeconds: v.DurationSeconds,
		Views:           v.Views,
		Owner:           r.owners[v.OwnerID],
		WatchedAt:       time.Now(),
	}
	r.history[userID] = append([]entity.VideoView{view}, views...)
	return nil
}

var _ repo.VideoRepository = (*fakeVideoRepo)(nil)

// fakeMedia stands in for the GCS-backed store.
type fakeMedia struct {
	mu      sync.Mutex
	fail    bool
	uploads int
}

func (m *fakeMedia) UploadImage(ctx context.Context, kind, ownerID string, f FileUpload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("media host unavailable")
	}
	m.uploads++
	return fmt.Sprintf("https://media.test/%s/%s/%s", kind, ownerID, f.Filename), nil
}

var _ MediaUploader = (*fakeMedia)(nil)
