package repositories

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
)

// dateLayout is how all dates are stored in sqlite.
const dateLayout = "2006-01-02"

// BaseRepository provides common database operations
type BaseRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewBase creates a new base repository
func NewBase(db *sql.DB, log zerolog.Logger) *BaseRepository {
	return &BaseRepository{
		db:  db,
		log: log,
	}
}

// DB returns the database connection
func (r *BaseRepository) DB() *sql.DB {
	return r.db
}

// formatDate renders a time as the stored date string.
func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// parseDate reads a stored date string back into a midnight-UTC time.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
