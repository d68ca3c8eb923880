package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomchat/internal/app/db"
	"roomchat/internal/pkg/errs"
)

const userColumns = `id, username, email, password_hash, is_active, is_admin, created_at, updated_at, last_login`

// Store is the PostgreSQL adapter for user accounts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a user Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u         User
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		lastLogin pgtype.Timestamptz
	)

	err := row.Scan(&id, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsAdmin, &createdAt, &updatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}

	u.ID = id.String()
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}

	return &u, nil
}

// Create inserts a new account with the given unique username/email and bcrypt hash.
// Unique constraint violations are reported as ErrUserAlreadyExists.
func (s *Store) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		username, email, passwordHash,
	)

	u, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.NewError(errs.ErrUserAlreadyExists)
		}
		return nil, err
	}

	return u, nil
}

// FetchByID returns the account with the given identifier, or ErrUserNotFound.
func (s *Store) FetchByID(ctx context.Context, id string) (*User, error) {
	userID, err := db.ParseUUID(id)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		return nil, err
	}

	return u, nil
}

// FetchByUsername returns the account with the given username, or ErrUserNotFound.
func (s *Store) FetchByUsername(ctx context.Context, username string) (*User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		return nil, err
	}

	return u, nil
}

// List returns all accounts ordered by creation time.
func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

// TouchLastLogin records a successful authentication for the account.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	userID, err := db.ParseUUID(id)
	if err != nil {
		return errs.NewError(errs.ErrUserNotFound)
	}

	_, err = s.pool.Exec(ctx, `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`, userID)
	return err
}
