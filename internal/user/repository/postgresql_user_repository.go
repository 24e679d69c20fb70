package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/pii"
)

// NewPostgreSQLUserRepository creates a UserRepository for PostgreSQL.
// IDs are stored in native UUID columns.
func NewPostgreSQLUserRepository(db *sql.DB, protector *pii.Protector) *UserRepository {
	return &UserRepository{
		db:        db,
		protector: protector,
		dialect: dialect{
			placeholder: postgresPlaceholder,
			id: func(id uuid.UUID) (any, error) {
				return id, nil
			},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}
