package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/domain/entity"
	repo "github.com/vidtube/backend/internal/domain/repository"
)

const userColumns = `id, username, email, fullname, password_hash, avatar_url, cover_image_url, COALESCE(refresh_token, ''), created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Fullname, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, fullname, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Fullname, u.PasswordHash, u.AvatarURL, u.CoverImageURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return translateUnique(err)
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	ctx := context.Background()
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

// GetByIdentity matches the identity against the lowercased username or the
// email, mirroring the login form's single identity field.
func (r *UserRepository) GetByIdentity(identity string) (*entity.User, error) {
	ctx := context.Background()
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 OR email = $2
	`, strings.ToLower(identity), identity))
}

func (r *UserRepository) GetByUsername(username string) (*entity.User, error) {
	ctx := context.Background()
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, strings.ToLower(username)))
}

func (r *UserRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UpdateRefreshToken(id, token string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET refresh_token = NULLIF($1, ''), updated_at = now()
		WHERE id = $2
	`, token, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// RotateRefreshToken is the atomic rotation guard: the UPDATE only matches
// while old is still the stored token, so a concurrent refresh or logout makes
// this report false instead of silently overwriting.
func (r *UserRepository) RotateRefreshToken(id, old, new string) (bool, error) {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET refresh_token = $1, updated_at = now()
		WHERE id = $2 AND refresh_token = $3
	`, new, id, old)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, updated_at = now()
		WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(id, fullname, email string) (*entity.User, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET fullname = COALESCE(NULLIF($1, ''), fullname),
		    email = COALESCE(NULLIF($2, ''), email),
		    updated_at = now()
		WHERE id = $3
		RETURNING `+userColumns+`
	`, fullname, email, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return u, nil
}

func (r *UserRepository) UpdateAvatarURL(id, url string) error {
	return r.updateField(id, "avatar_url", url)
}

func (r *UserRepository) UpdateCoverImageURL(id, url string) error {
	return r.updateField(id, "cover_image_url", url)
}

func (r *UserRepository) updateField(id, column, value string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET `+column+` = $1, updated_at = now() WHERE id = $2
	`, value, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

var _ repo.UserRepository = (*UserRepository)(nil)
