package room

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomchat/internal/app/db"
	"roomchat/internal/pkg/errs"
)

const publicRoomColumns = `id, owner_id, name, description, max_members, welcome_message, rules,
	allow_file_sharing, allow_message_history, max_history_messages, members, ban_list, moderators, created_at`

const privateRoomColumns = `id, member1, member2, created_at`

// Store is the PostgreSQL adapter for public and private rooms.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a room Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanPublicRoom(row pgx.Row) (*PublicRoom, error) {
	var (
		r          PublicRoom
		id         pgtype.UUID
		ownerID    pgtype.UUID
		maxMembers pgtype.Int4
		maxHistory pgtype.Int4
		members    []pgtype.UUID
		banList    []pgtype.UUID
		moderators []pgtype.UUID
		createdAt  pgtype.Timestamptz
	)

	err := row.Scan(&id, &ownerID, &r.Name, &r.Description, &maxMembers, &r.WelcomeMessage, &r.Rules,
		&r.AllowFileSharing, &r.AllowMessageHistory, &maxHistory, &members, &banList, &moderators, &createdAt)
	if err != nil {
		return nil, err
	}

	r.ID = id.String()
	r.OwnerID = ownerID.String()
	if maxMembers.Valid {
		r.MaxMembers = int(maxMembers.Int32)
	}
	if maxHistory.Valid {
		r.MaxHistoryMessages = int(maxHistory.Int32)
	}
	r.Members = db.UUIDStrings(members)
	r.BanList = db.UUIDStrings(banList)
	r.Moderators = db.UUIDStrings(moderators)
	r.CreatedAt = createdAt.Time

	return &r, nil
}

func scanPrivateRoom(row pgx.Row) (*PrivateRoom, error) {
	var (
		r         PrivateRoom
		id        pgtype.UUID
		member1   pgtype.UUID
		member2   pgtype.UUID
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&id, &member1, &member2, &createdAt)
	if err != nil {
		return nil, err
	}

	r.ID = id.String()
	r.Member1 = member1.String()
	r.Member2 = member2.String()
	r.CreatedAt = createdAt.Time

	return &r, nil
}

// CreatePublicParams carries the owner-supplied settings for a new public room.
type CreatePublicParams struct {
	OwnerID             string
	Name                string
	Description         string
	MaxMembers          int
	WelcomeMessage      string
	Rules               string
	AllowFileSharing    bool
	AllowMessageHistory bool
	MaxHistoryMessages  int
}

// CreatePublic inserts a new public room with the owner as its first member.
// A taken name is reported as ErrRoomNameExists.
func (s *Store) CreatePublic(ctx context.Context, params CreatePublicParams) (*PublicRoom, error) {
	ownerID, err := db.ParseUUID(params.OwnerID)
	if err != nil {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	var maxMembers pgtype.Int4
	if params.MaxMembers > 0 {
		maxMembers = pgtype.Int4{Int32: int32(params.MaxMembers), Valid: true}
	}

	var maxHistory pgtype.Int4
	if params.MaxHistoryMessages > 0 {
		maxHistory = pgtype.Int4{Int32: int32(params.MaxHistoryMessages), Valid: true}
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO public_rooms (owner_id, name, description, max_members, welcome_message, rules,
			allow_file_sharing, allow_message_history, max_history_messages, members)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, ARRAY[$1]::uuid[])
		RETURNING `+publicRoomColumns,
		ownerID, params.Name, params.Description, maxMembers, params.WelcomeMessage, params.Rules,
		params.AllowFileSharing, params.AllowMessageHistory, maxHistory,
	)

	r, err := scanPublicRoom(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.NewError(errs.ErrRoomNameExists)
		}
		return nil, err
	}

	return r, nil
}

// FetchPublic returns the public room with the given identifier, or ErrRoomNotFound.
func (s *Store) FetchPublic(ctx context.Context, id string) (*PublicRoom, error) {
	roomID, err := db.ParseUUID(id)
	if err != nil {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	row := s.pool.QueryRow(ctx, `SELECT `+publicRoomColumns+` FROM public_rooms WHERE id = $1`, roomID)

	r, err := scanPublicRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewError(errs.ErrRoomNotFound)
		}
		return nil, err
	}

	return r, nil
}

// JoinPublic adds the user to the room's persisted membership. The member add is
// a single conditional UPDATE so concurrent joins cannot lose updates: the row
// only changes when the user is not banned, not already a member, and the cap
// is not reached. Already being a member is a success. Failure classification
// (not found, banned, full) is done from a fresh read when the UPDATE matched
// no row.
func (s *Store) JoinPublic(ctx context.Context, roomID, userID string) (*PublicRoom, error) {
	id, err := db.ParseUUID(roomID)
	if err != nil {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	uid, err := db.ParseUUID(userID)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE public_rooms
		SET members = array_append(members, $2)
		WHERE id = $1
		  AND NOT ($2 = ANY(ban_list))
		  AND NOT ($2 = ANY(members))
		  AND (max_members IS NULL OR cardinality(members) < max_members)
		RETURNING `+publicRoomColumns,
		id, uid,
	)

	r, err := scanPublicRoom(row)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// The conditional UPDATE matched nothing; re-read to find out why.
	current, err := s.FetchPublic(ctx, roomID)
	if err != nil {
		return nil, err
	}

	switch current.MembershipOf(userID) {
	case MembershipBanned:
		return nil, errs.NewError(errs.ErrBannedFromRoom)
	case MembershipMember:
		return current, nil
	default:
		return nil, errs.NewError(errs.ErrRoomIsFull)
	}
}

// PublicMembership classifies the user's persisted standing in the room.
func (s *Store) PublicMembership(ctx context.Context, roomID, userID string) (Membership, error) {
	r, err := s.FetchPublic(ctx, roomID)
	if err != nil {
		return MembershipNone, err
	}

	return r.MembershipOf(userID), nil
}

// ListPublic returns one page of public rooms ordered by creation time, plus the total count.
func (s *Store) ListPublic(ctx context.Context, page, perPage int) ([]PublicRoom, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM public_rooms`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+publicRoomColumns+` FROM public_rooms
		ORDER BY created_at
		LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rooms []PublicRoom
	for rows.Next() {
		r, err := scanPublicRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, *r)
	}

	return rooms, total, rows.Err()
}

// CreatePrivate returns the private room for the unordered user pair, creating
// it on first interaction. Creation with oneself is rejected. The pair is
// normalized before insert, and a concurrent create for the same pair loses
// against the unique pair index and falls back to returning the existing room,
// so the call is idempotent under either argument order.
func (s *Store) CreatePrivate(ctx context.Context, userID, peerID string) (*PrivateRoom, error) {
	if userID == peerID {
		return nil, errs.NewError(errs.ErrSelfPrivateRoom)
	}

	existing, err := s.FetchPrivateByMembers(ctx, userID, peerID)
	if err == nil {
		return existing, nil
	}
	var custom *errs.CustomError
	if !errors.As(err, &custom) || custom.Code != errs.ErrRoomNotFound {
		return nil, err
	}

	first, second := NormalizePair(userID, peerID)

	uid, err := db.ParseUUID(first)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	pid, err := db.ParseUUID(second)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO private_rooms (member1, member2)
		VALUES ($1, $2)
		RETURNING `+privateRoomColumns,
		uid, pid,
	)

	r, err := scanPrivateRoom(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return s.FetchPrivateByMembers(ctx, userID, peerID)
		}
		return nil, err
	}

	return r, nil
}

// FetchPrivate returns the private room with the given identifier, or ErrRoomNotFound.
func (s *Store) FetchPrivate(ctx context.Context, id string) (*PrivateRoom, error) {
	roomID, err := db.ParseUUID(id)
	if err != nil {
		return nil, errs.NewError(errs.ErrRoomNotFound)
	}

	row := s.pool.QueryRow(ctx, `SELECT `+privateRoomColumns+` FROM private_rooms WHERE id = $1`, roomID)

	r, err := scanPrivateRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewError(errs.ErrRoomNotFound)
		}
		return nil, err
	}

	return r, nil
}

// FetchPrivateByMembers looks up the room for the unordered pair; (A,B) and
// (B,A) yield the same room.
func (s *Store) FetchPrivateByMembers(ctx context.Context, userID, peerID string) (*PrivateRoom, error) {
	uid, err := db.ParseUUID(userID)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	pid, err := db.ParseUUID(peerID)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+privateRoomColumns+` FROM private_rooms
		WHERE (member1 = $1 AND member2 = $2) OR (member1 = $2 AND member2 = $1)`,
		uid, pid,
	)

	r, err := scanPrivateRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewError(errs.ErrRoomNotFound)
		}
		return nil, err
	}

	return r, nil
}

// ListPrivateFor returns every private room the user participates in.
func (s *Store) ListPrivateFor(ctx context.Context, userID string) ([]PrivateRoom, error) {
	uid, err := db.ParseUUID(userID)
	if err != nil {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+privateRoomColumns+` FROM private_rooms
		WHERE member1 = $1 OR member2 = $1
		ORDER BY created_at`,
		uid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []PrivateRoom
	for rows.Next() {
		r, err := scanPrivateRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}

	return rooms, rows.Err()
}
