package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, global_name, email, avatar_url, profile, scopes,
	access_token_sealed, refresh_token_sealed, token_expires_at,
	fetched_at, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	var (
		u                             domain.User
		email                         sql.NullString
		scopes                        string
		tokenExpires                  sql.NullInt64
		fetchedAt, createdAt, updated int64
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.GlobalName, &email, &u.AvatarURL, &u.Profile, &scopes,
		&u.AccessTokenSealed, &u.RefreshTokenSealed, &tokenExpires,
		&fetchedAt, &createdAt, &updated,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Email = mapNullStringPtr(email)
	u.Scopes = splitAndFilter(scopes)
	u.TokenExpiresAt = mapNullTimePtr(tokenExpires)
	u.FetchedAt = fromMillis(fetchedAt)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	created := u.CreatedAt
	if created.IsZero() {
		created = now
	}
	profile := u.Profile
	if profile == nil {
		profile = []byte("{}")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username             = excluded.username,
			global_name          = excluded.global_name,
			email                = excluded.email,
			avatar_url           = excluded.avatar_url,
			profile              = excluded.profile,
			scopes               = excluded.scopes,
			access_token_sealed  = excluded.access_token_sealed,
			refresh_token_sealed = excluded.refresh_token_sealed,
			token_expires_at     = excluded.token_expires_at,
			fetched_at           = excluded.fetched_at,
			updated_at           = excluded.updated_at`,
		u.ID, u.Username, u.GlobalName, mapOptionalString(u.Email), u.AvatarURL, profile,
		joinScopes(u.Scopes), u.AccessTokenSealed, u.RefreshTokenSealed,
		mapOptionalTime(u.TokenExpiresAt),
		toMillis(u.FetchedAt), toMillis(created), toMillis(now),
	)
	return err
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
