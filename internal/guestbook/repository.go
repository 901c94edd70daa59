package guestbook

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps database for the given driver name so placeholders are
// rebound to the driver's syntax.
func NewRepository(database *sql.DB, driver string) *Repository {
	return &Repository{db: sqlx.NewDb(database, driver)}
}

// List returns every message, oldest first.
func (r *Repository) List(ctx context.Context) ([]Message, error) {
	messages := make([]Message, 0)
	if err := r.db.SelectContext(ctx, &messages, `
		SELECT id, name, message
		FROM messages
		ORDER BY id ASC
	`); err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	return messages, nil
}

func (r *Repository) Append(ctx context.Context, name, message string) (Message, error) {
	m := Message{Name: name, Message: message}

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO messages (name, message)
		VALUES (?, ?)
		RETURNING id
	`), name, message).Scan(&m.ID)
	if err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}

	return m, nil
}
