package repository

import "github.com/vidtube/backend/internal/domain/entity"

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	// GetByIdentity matches either the (lowercased) username or the email.
	GetByIdentity(identity string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	// UpdateRefreshToken unconditionally stores token for the user
	// (empty string clears it). Single-field update, no full-row rewrite.
	UpdateRefreshToken(id, token string) error
	// RotateRefreshToken swaps old for new only if old is still the stored
	// value. Returns false when the stored token no longer matches, which is
	// how a replayed or superseded refresh token is detected.
	RotateRefreshToken(id, old, new string) (bool, error)
	UpdatePassword(id, passwordHash string) error
	UpdateProfile(id, fullname, email string) (*entity.User, error)
	UpdateAvatarURL(id, url string) error
	UpdateCoverImageURL(id, url string) error
}
