package sqlite

import (
	"context"
	"time"

	"github.com/marabinga/passport-dc/internal/portal/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, scopes, user_agent, ip, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, joinScopes(s.Scopes), s.UserAgent, s.IP,
		toMillis(s.ExpiresAt), toMillis(created),
	)
	return err
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id string) (domain.Session, error) {
	var (
		s                  domain.Session
		scopes             string
		expires, createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, scopes, user_agent, ip, expires_at, created_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &scopes, &s.UserAgent, &s.IP, &expires, &createdAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.Scopes = splitAndFilter(scopes)
	s.ExpiresAt = fromMillis(expires)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteSessionsForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(time.Now()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
