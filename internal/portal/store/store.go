package store

import (
	"context"
	"errors"

	"github.com/marabinga/passport-dc/internal/portal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories so that a Tx hands out the same repos bound to the
// transaction.
type Store interface {
	Users() Users
	Sessions() Sessions
	GuildJoins() GuildJoins

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// UpsertUser inserts the user or refreshes every mutable column.
	// created_at is kept from the first insert.
	UpsertUser(ctx context.Context, u domain.User) error

	// DeleteUser cascades to sessions and guild joins.
	DeleteUser(ctx context.Context, id string) error

	CountUsers(ctx context.Context) (int, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSessionByID(ctx context.Context, id string) (domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredSessions removes sessions whose expiry is at or before now.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type GuildJoins interface {
	RecordGuildJoin(ctx context.Context, j domain.GuildJoin) error

	// ListGuildJoinsForUser returns the newest attempts first.
	ListGuildJoinsForUser(ctx context.Context, userID string, limit int) ([]domain.GuildJoin, error)
}
