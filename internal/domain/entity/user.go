package entity

import "time"

// User is the aggregate root for the account domain. Passwords are stored as
// bcrypt hashes in PasswordHash; RefreshToken holds the single currently valid
// refresh token for the account (empty when logged out).
type User struct {
	ID            string
	Username      string // unique, lowercased
	Email         string // unique
	Fullname      string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Sanitized is the projection of a User that may cross the API boundary.
// Credential and session-secret fields are stripped.
type Sanitized struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Fullname      string    `json:"fullname"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Sanitize strips the password hash and refresh token from a User.
func (u *User) Sanitize() Sanitized {
	return Sanitized{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Fullname:      u.Fullname,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
