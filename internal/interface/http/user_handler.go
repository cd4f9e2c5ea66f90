package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vidtube/backend/internal/application"
	"github.com/vidtube/backend/internal/interface/middleware"
	"github.com/vidtube/backend/pkg/helpers"
	"github.com/vidtube/backend/pkg/response"
	"github.com/vidtube/backend/pkg/validation"
)

// UserHandler exposes account and session endpoints.
type UserHandler struct {
	Sessions *application.SessionService
	Profiles *application.ProfileService
	Logger   *logrus.Logger
	Cookies  *helpers.CookieManager
}

func NewUserHandler(sessions *application.SessionService, profiles *application.ProfileService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{
		Sessions: sessions,
		Profiles: profiles,
		Logger:   logger,
		Cookies:  helpers.NewCookie(cookieDomain, cookieSecure),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type updateAccountRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles the multipart registration form: fullname, email, username,
// password plus an avatar file (required) and a coverImage file (optional).
func (h *UserHandler) Register(c *gin.Context) {
	in := application.RegisterInput{
		Fullname: c.PostForm("fullname"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	avatar, closeAvatar, err := fileFromForm(c, "avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	defer closeAvatar()

	var cover *application.FileUpload
	if cv, closeCover, cerr := fileFromForm(c, "coverImage"); cerr == nil {
		cover = cv
		defer closeCover()
	}

	u, err := h.Sessions.Register(c.Request.Context(), in, *avatar, cover)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user registered successfully", nil)
}

// Login accepts username or email plus password, sets the cookie pair and
// returns the sanitized user with both tokens.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	identity := req.Username
	if identity == "" {
		identity = req.Email
	}

	u, pair, err := h.Sessions.Login(c.Request.Context(), identity, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "user logged in successfully", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh rotates the token pair. The refresh token comes from the cookie or,
// failing that, the request body.
func (h *UserHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(helpers.RefreshCookie)
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.Sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}

	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "access token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Sessions.Logout(c.Request.Context(), uid); err != nil {
		fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "user logged out successfully", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Sessions.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed successfully", nil)
}

func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Profiles.GetCurrentUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "current user", nil)
}

func (h *UserHandler) UpdateAccount(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Profiles.UpdateAccount(c.Request.Context(), uid, req.Fullname, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "account updated successfully", nil)
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.Profiles.UpdateAvatar)
}

func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.Profiles.UpdateCoverImage)
}

func (h *UserHandler) updateImage(c *gin.Context, field string, update func(ctx context.Context, userID string, f application.FileUpload) (string, error)) {
	uid := c.GetString(middleware.CtxUserIDKey)
	f, closeFile, err := fileFromForm(c, field)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, field+" file is required", nil)
		return
	}
	defer closeFile()

	url, err := update(c.Request.Context(), uid, *f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, field+" updated successfully", nil)
}

func (h *UserHandler) WatchHistory(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	views, err := h.Profiles.GetWatchHistory(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, views, "watch history", gin.H{"count": len(views)})
}

func (h *UserHandler) RecordWatch(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	videoID := c.Param("videoId")
	if err := h.Profiles.RecordWatch(c.Request.Context(), uid, videoID); err != nil {
		fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"recorded": true}, "watch event recorded", nil)
}

// fileFromForm opens one multipart file and hands it to the service as a
// FileUpload. The returned closer must be deferred by the caller.
func fileFromForm(c *gin.Context, field string) (*application.FileUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &application.FileUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: contentTypeOf(fh),
	}, func() { _ = f.Close() }, nil
}

func contentTypeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
