package repositories

import (
	"errors"

	"github.com/jackc/pgconn"
)

// Default Postgres names of the user foreign keys.
const (
	FKBookingGuest  = "bookings_guest_id_fkey"
	FKPropertyOwner = "properties_owner_id_fkey"
	FKReviewAuthor  = "reviews_author_id_fkey"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
	pgCheckViolation      = "23514"
	pgNumericOverflow     = "22003"
)

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgUniqueViolation
}

func isExclusionViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgExclusionViolation
}

// IsForeignKeyViolation reports whether err was raised because a referenced
// row (property, amenity, category, user) does not exist.
func IsForeignKeyViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgForeignKeyViolation
}

// IsForeignKeyViolationOn narrows IsForeignKeyViolation to one constraint,
// e.g. "bookings_guest_id_fkey".
func IsForeignKeyViolationOn(err error, constraint string) bool {
	code, name := pgErrorCode(err)
	return code == pgForeignKeyViolation && name == constraint
}

// IsNumericOverflow reports a value too large for its NUMERIC column.
func IsNumericOverflow(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgNumericOverflow
}

// IsCheckViolation reports whether a CHECK constraint rejected the row.
func IsCheckViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgCheckViolation
}
