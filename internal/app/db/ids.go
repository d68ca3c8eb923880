package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// ParseUUID converts a string identifier into a pgtype.UUID for query parameters.
// An error indicates the string is not a well-formed UUID.
func ParseUUID(s string) (pgtype.UUID, error) {
	var id pgtype.UUID
	err := id.Scan(s)
	return id, err
}

// UUIDStrings converts a scanned uuid[] column into canonical string form.
func UUIDStrings(ids []pgtype.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id.Valid {
			out = append(out, id.String())
		}
	}
	return out
}
