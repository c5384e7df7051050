package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is the persisted log of one client connection.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   *time.Time
	Frames    uint64
}

// SessionRepository provides access to connection logs.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session log repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start records a new connection.
func (r *SessionRepository) Start(id string, at time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, at,
	)
	return err
}

// Finish marks a connection closed and records its total frame count.
func (r *SessionRepository) Finish(id string, at time.Time, frames uint64) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ? WHERE id = ?`,
		at, frames, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves one session log.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at, frames FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.StartedAt, &ended, &sess.Frames)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if ended.Valid {
		sess.EndedAt = &ended.Time
	}
	return sess, nil
}
