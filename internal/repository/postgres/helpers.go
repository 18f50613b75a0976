package postgres

import (
	"database/sql"
	"strings"
)

func nullString(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{Valid: false}
	}
	v := strings.TrimSpace(*ptr)
	if v == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: v, Valid: true}
}
