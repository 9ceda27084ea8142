package sqlite

import (
	"context"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/domain"
)

type guildJoinsRepo struct {
	db dbtx
}

func (r *guildJoinsRepo) RecordGuildJoin(ctx context.Context, j domain.GuildJoin) error {
	created := j.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO guild_joins (id, user_id, guild_id, status_code, success, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.UserID, j.GuildID, j.StatusCode, j.Success, j.Error, toMillis(created),
	)
	return err
}

func (r *guildJoinsRepo) ListGuildJoinsForUser(ctx context.Context, userID string, limit int) ([]domain.GuildJoin, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, guild_id, status_code, success, error, created_at
		FROM guild_joins WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GuildJoin
	for rows.Next() {
		var (
			j         domain.GuildJoin
			createdAt int64
		)
		if err := rows.Scan(&j.ID, &j.UserID, &j.GuildID, &j.StatusCode, &j.Success, &j.Error, &createdAt); err != nil {
			return nil, err
		}
		j.CreatedAt = fromMillis(createdAt)
		out = append(out, j)
	}
	return out, rows.Err()
}
