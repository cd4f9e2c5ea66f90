package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vidtube/backend/internal/domain/entity"
	repo "github.com/vidtube/backend/internal/domain/repository"
	"github.com/vidtube/backend/pkg/helpers"
	"github.com/vidtube/backend/pkg/mailer"
)

// SessionService orchestrates registration, login, logout, refresh and
// password change. The stored refresh token on the user row is the single
// source of session validity: login and refresh overwrite it, logout clears
// it, and refresh only accepts a token that still matches it.
type SessionService struct {
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
	Media   MediaUploader
	Pub     *helpers.RabbitPublisher
	Index   *ChannelIndex
	Logger  *logrus.Logger
	AppName string
}

func NewSessionService(users repo.UserRepository, jwt *helpers.JWTManager, media MediaUploader, pub *helpers.RabbitPublisher, index *ChannelIndex, logger *logrus.Logger, appName string) *SessionService {
	return &SessionService{Users: users, JWT: jwt, Media: media, Pub: pub, Index: index, Logger: logger, AppName: appName}
}

// TokenPair is one issued access/refresh credential pair.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Fullname string
	Email    string
	Username string
	Password string
}

// Register creates the account. The avatar is mandatory and must land on the
// media host before the row is written; the cover image is optional.
func (s *SessionService) Register(ctx context.Context, in RegisterInput, avatar FileUpload, cover *FileUpload) (entity.Sanitized, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if in.Fullname == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return entity.Sanitized{}, NewValidation("all fields are required")
	}

	exists, err := s.Users.ExistsByUsernameOrEmail(in.Username, in.Email)
	if err != nil {
		return entity.Sanitized{}, NewInternal("failed to check existing user")
	}
	if exists {
		return entity.Sanitized{}, NewConflict("user with email or username already exists")
	}

	avatarURL, err := s.Media.UploadImage(ctx, "avatars", in.Username, avatar)
	if err != nil {
		return entity.Sanitized{}, NewValidation("avatar file is required")
	}
	coverURL := ""
	if cover != nil {
		if coverURL, err = s.Media.UploadImage(ctx, "covers", in.Username, *cover); err != nil {
			// cover is optional, a failed upload just leaves it empty
			coverURL = ""
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return entity.Sanitized{}, NewInternal("failed to hash password")
	}

	u := &entity.User{
		Username:      in.Username,
		Email:         in.Email,
		Fullname:      in.Fullname,
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}
	if err := s.Users.Create(u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return entity.Sanitized{}, NewConflict("user with email or username already exists")
		}
		return entity.Sanitized{}, NewInternal("failed to register user")
	}

	s.Index.IndexChannel(ctx, u)
	s.publishEmail(ctx, u, mailer.TemplateWelcome)

	return u.Sanitize(), nil
}

// Login verifies credentials, issues a fresh token pair and persists the new
// refresh token with a single-field update.
func (s *SessionService) Login(ctx context.Context, identity, password string) (entity.Sanitized, TokenPair, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" || password == "" {
		return entity.Sanitized{}, TokenPair{}, NewValidation("username or email and password are required")
	}

	u, err := s.Users.GetByIdentity(identity)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return entity.Sanitized{}, TokenPair{}, NewNotFound("user does not exist")
		}
		return entity.Sanitized{}, TokenPair{}, NewInternal("failed to look up user")
	}

	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return entity.Sanitized{}, TokenPair{}, NewAuthentication("invalid credentials")
	}

	pair, err := s.issueTokenPair(u.ID)
	if err != nil {
		return entity.Sanitized{}, TokenPair{}, err
	}
	if err := s.Users.UpdateRefreshToken(u.ID, pair.RefreshToken); err != nil {
		return entity.Sanitized{}, TokenPair{}, NewInternal("failed to persist refresh token")
	}

	return u.Sanitize(), pair, nil
}

// Logout clears the stored refresh token. No credential check: the caller was
// already authenticated upstream. Repeating it is a no-op.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.Users.UpdateRefreshToken(userID, ""); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("user does not exist")
		}
		return NewInternal("failed to clear refresh token")
	}
	return nil
}

// Refresh exchanges a still-valid refresh token for a new pair. The presented
// token must match the stored one exactly; rotation is a compare-and-swap so a
// concurrent refresh loses cleanly. Every failure in this flow collapses to an
// authentication error at the boundary.
func (s *SessionService) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	if presented == "" {
		return TokenPair{}, NewAuthentication("unauthorized request")
	}

	claims, err := s.JWT.ParseRefreshToken(presented)
	if err != nil {
		return TokenPair{}, NewAuthentication("invalid refresh token")
	}

	u, err := s.Users.GetByID(claims.UserID)
	if err != nil {
		return TokenPair{}, NewAuthentication("invalid refresh token")
	}
	if u.RefreshToken == "" || u.RefreshToken != presented {
		return TokenPair{}, NewAuthentication("refresh token is expired or used")
	}

	pair, err := s.issueTokenPair(u.ID)
	if err != nil {
		return TokenPair{}, NewAuthentication("could not refresh access token")
	}

	swapped, err := s.Users.RotateRefreshToken(u.ID, presented, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, NewAuthentication("could not refresh access token")
	}
	if !swapped {
		// lost the race against a concurrent refresh or logout
		return TokenPair{}, NewAuthentication("refresh token is expired or used")
	}

	return pair, nil
}

// ChangePassword re-hashes and persists the new password after verifying the
// old one.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return NewValidation("old and new password are required")
	}

	u, err := s.Users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("user does not exist")
		}
		return NewInternal("failed to look up user")
	}

	if !helpers.CompareHashAndPassword(u.PasswordHash, oldPassword) {
		return NewValidation("invalid old password")
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return NewInternal("failed to hash password")
	}
	if err := s.Users.UpdatePassword(u.ID, hash); err != nil {
		return NewInternal("failed to update password")
	}

	s.publishEmail(ctx, u, mailer.TemplatePasswordChanged)
	return nil
}

func (s *SessionService) issueTokenPair(userID string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID)
	if err != nil {
		s.logErr(err, userID, "generate access token failed")
		return TokenPair{}, NewInternal("something went wrong while generating tokens")
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID)
	if err != nil {
		s.logErr(err, userID, "generate refresh token failed")
		return TokenPair{}, NewInternal("something went wrong while generating tokens")
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *SessionService) publishEmail(ctx context.Context, u *entity.User, template string) {
	if s.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data: map[string]any{
			"AppName":  s.AppName,
			"Fullname": u.Fullname,
			"Username": u.Username,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("email job publish failed")
	}
}

func (s *SessionService) logErr(err error, userID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error(msg)
	}
}
