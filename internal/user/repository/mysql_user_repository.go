package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/pii"
)

// NewMySQLUserRepository creates a UserRepository for MySQL.
// IDs are stored as BINARY(16).
func NewMySQLUserRepository(db *sql.DB, protector *pii.Protector) *UserRepository {
	return &UserRepository{
		db:        db,
		protector: protector,
		dialect: dialect{
			placeholder: mysqlPlaceholder,
			id: func(id uuid.UUID) (any, error) {
				return id.MarshalBinary()
			},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}
