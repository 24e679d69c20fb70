package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	postgresUniqueViolation = pq.ErrorCode("23505")
	mysqlDuplicateEntry     = 1062
)

// UniqueViolation reports a unique constraint failure and the constraint that raised it.
type UniqueViolation struct {
	// Constraint is the index or constraint name without any table prefix.
	Constraint string
}

// AsUniqueViolation reports whether err is a PostgreSQL or MySQL unique constraint
// violation and, if so, which constraint was violated.
func AsUniqueViolation(err error) (UniqueViolation, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == postgresUniqueViolation {
		return UniqueViolation{Constraint: pqErr.Constraint}, true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return UniqueViolation{Constraint: mysqlDuplicateKey(myErr.Message)}, true
	}

	return UniqueViolation{}, false
}

// mysqlDuplicateKey extracts the key name from a message such as
// "Duplicate entry 'x' for key 'users.users_email_key'".
func mysqlDuplicateKey(message string) string {
	const marker = "for key '"
	idx := strings.LastIndex(message, marker)
	if idx < 0 {
		return ""
	}
	key := strings.TrimSuffix(message[idx+len(marker):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}
