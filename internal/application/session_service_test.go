package application

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/pkg/helpers"
)

func newSessionFixture(t *testing.T) (*SessionService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	jwtm := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
	svc := NewSessionService(users, jwtm, &fakeMedia{}, nil, nil, nil, "vidtube-test")
	return svc, users
}

func avatarFile() FileUpload {
	return FileUpload{Reader: strings.NewReader("png-bytes"), Filename: "avatar.png", ContentType: "image/png"}
}

func registerAlice(t *testing.T, svc *SessionService) string {
	t.Helper()
	out, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Alice Doe",
		Email:    "alice@example.com",
		Username: "Alice",
		Password: "password123",
	}, avatarFile(), nil)
	require.NoError(t, err)
	return out.ID
}

func TestRegisterSanitizesOutput(t *testing.T) {
	svc, users := newSessionFixture(t)

	out, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Alice Doe",
		Email:    "alice@example.com",
		Username: "  Alice  ",
		Password: "password123",
	}, avatarFile(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "alice", out.Username, "username is trimmed and lowercased")
	assert.NotEmpty(t, out.AvatarURL)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	body := strings.ToLower(string(b))
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "refresh")

	stored, err := users.GetByID(out.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "password123"))
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	svc, users := newSessionFixture(t)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Alice Clone",
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "password123",
	}, avatarFile(), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConflict))
	assert.Len(t, users.users, 1, "no row written on conflict")
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newSessionFixture(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Alice Doe",
		Email:    "",
		Username: "alice",
		Password: "password123",
	}, avatarFile(), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestRegisterAvatarUploadFailure(t *testing.T) {
	svc, users := newSessionFixture(t)
	svc.Media = &fakeMedia{fail: true}

	_, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Alice Doe",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	}, avatarFile(), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Empty(t, users.users, "avatar must land before the row is written")
}

func TestLoginIssuesPairAndPersistsRefresh(t *testing.T) {
	svc, users := newSessionFixture(t)
	id := registerAlice(t, svc)

	out, pair, err := svc.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.AccessTokenExpiry.After(time.Now()))

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)

	stored, err := users.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)

	// email works as the identity too
	_, _, err = svc.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newSessionFixture(t)
	registerAlice(t, svc)

	_, _, err := svc.Login(context.Background(), "alice", "wrong-password")
	assert.True(t, IsKind(err, KindAuthentication))

	_, _, err = svc.Login(context.Background(), "nobody", "password123")
	assert.True(t, IsKind(err, KindNotFound))

	_, _, err = svc.Login(context.Background(), "", "password123")
	assert.True(t, IsKind(err, KindValidation))

	_, _, err = svc.Login(context.Background(), "alice", "")
	assert.True(t, IsKind(err, KindValidation))
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	svc, users := newSessionFixture(t)
	id := registerAlice(t, svc)

	_, pair, err := svc.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	stored, err := users.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, next.RefreshToken, stored.RefreshToken)

	// the superseded token must be dead
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthentication))

	// the rotated token still works
	_, err = svc.Refresh(context.Background(), next.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshBackToBackInvalidatesEachPredecessor(t *testing.T) {
	svc, _ := newSessionFixture(t)
	registerAlice(t, svc)

	// login and both refreshes land within the same second; every issued
	// token must still differ from the one it replaces, or the swap is a
	// no-op and the replaced token stays live
	_, pair, err := svc.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)

	prev := pair.RefreshToken
	for i := 0; i < 3; i++ {
		next, err := svc.Refresh(context.Background(), prev)
		require.NoError(t, err)
		require.NotEqual(t, prev, next.RefreshToken)

		_, err = svc.Refresh(context.Background(), prev)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindAuthentication))

		prev = next.RefreshToken
	}
}

func TestRefreshAfterLogoutFails(t *testing.T) {
	svc, _ := newSessionFixture(t)
	id := registerAlice(t, svc)

	_, pair, err := svc.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), id))
	require.NoError(t, svc.Logout(context.Background(), id), "logout is idempotent")

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthentication))
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	svc, _ := newSessionFixture(t)
	registerAlice(t, svc)

	_, err := svc.Refresh(context.Background(), "")
	assert.True(t, IsKind(err, KindAuthentication))

	_, err = svc.Refresh(context.Background(), "not-a-jwt")
	assert.True(t, IsKind(err, KindAuthentication))

	// a token signed for a user that no longer exists
	other := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", time.Minute, time.Hour)
	tok, _, err := other.GenerateRefreshToken("ghost-user")
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), tok)
	assert.True(t, IsKind(err, KindAuthentication))
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	svc, _ := newSessionFixture(t)
	registerAlice(t, svc)

	_, pair, err := svc.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Refresh(context.Background(), pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.True(t, IsKind(err, KindAuthentication))
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent refresh may rotate the token")
}

func TestChangePassword(t *testing.T) {
	svc, _ := newSessionFixture(t)
	id := registerAlice(t, svc)

	err := svc.ChangePassword(context.Background(), id, "wrong-old", "newpassword1")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))

	require.NoError(t, svc.ChangePassword(context.Background(), id, "password123", "newpassword1"))

	_, _, err = svc.Login(context.Background(), "alice", "password123")
	assert.True(t, IsKind(err, KindAuthentication), "old password no longer works")

	_, _, err = svc.Login(context.Background(), "alice", "newpassword1")
	require.NoError(t, err)
}
