package message

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomchat/internal/app/db"
	"roomchat/internal/pkg/errs"
)

const messageColumns = `id, user_id, room_id, room_type, content, media_key, created_at`

// Store is the PostgreSQL adapter for the append-only message log.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a message Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanMessage(row pgx.Row) (*Message, error) {
	var (
		m         Message
		id        pgtype.UUID
		userID    pgtype.UUID
		roomID    pgtype.UUID
		content   pgtype.Text
		mediaKey  pgtype.Text
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&id, &userID, &roomID, &m.RoomType, &content, &mediaKey, &createdAt)
	if err != nil {
		return nil, err
	}

	m.ID = id.String()
	m.UserID = userID.String()
	m.RoomID = roomID.String()
	m.Content = content.String
	m.MediaKey = mediaKey.String
	m.CreatedAt = createdAt.Time

	return &m, nil
}

// Insert appends a message and returns it with its store-generated id and timestamp.
func (s *Store) Insert(ctx context.Context, m Message) (*Message, error) {
	userID, err := db.ParseUUID(m.UserID)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	roomID, err := db.ParseUUID(m.RoomID)
	if err != nil {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	var content pgtype.Text
	if m.Content != "" {
		content = pgtype.Text{String: m.Content, Valid: true}
	}

	var mediaKey pgtype.Text
	if m.MediaKey != "" {
		mediaKey = pgtype.Text{String: m.MediaKey, Valid: true}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO messages (user_id, room_id, room_type, content, media_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+messageColumns,
		userID, roomID, m.RoomType, content, mediaKey,
	)

	persisted, err := scanMessage(row)
	if err != nil {
		// The has_body check rejects rows with neither text nor media.
		if db.IsCheckViolation(err) {
			return nil, errs.NewError(errs.ErrEmptyMessage)
		}
		return nil, err
	}

	return persisted, nil
}

// ListByRoom returns up to limit latest messages for the room in chronological
// order. A limit of 0 falls back to the default page size.
func (s *Store) ListByRoom(ctx context.Context, roomID, roomType string, limit int) ([]Message, error) {
	id, err := db.ParseUUID(roomID)
	if err != nil {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	if limit < 1 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+` FROM messages
			WHERE room_id = $1 AND room_type = $2
			ORDER BY created_at DESC
			LIMIT $3
		) latest
		ORDER BY created_at`,
		id, roomType, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}

	return messages, rows.Err()
}
