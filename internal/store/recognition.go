package store

import (
	"database/sql"
	"time"
)

// Recognition is one admitted (confidence- and majority-gated) prediction.
type Recognition struct {
	ID         int64
	SessionID  string
	Label      string
	Confidence float64
	Frame      uint64
	CreatedAt  time.Time
}

// RecognitionRepository provides access to recognition events.
type RecognitionRepository struct {
	db *sql.DB
}

// Recognitions returns the recognition event repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Create records one admitted prediction.
func (r *RecognitionRepository) Create(rec *Recognition) error {
	rec.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO recognitions (session_id, label, confidence, frame, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Label, rec.Confidence, rec.Frame, rec.CreatedAt,
	)
	if err != nil {
		return err
	}

	rec.ID, err = result.LastInsertId()
	return err
}

// ListRecent retrieves the newest events, optionally filtered by session.
func (r *RecognitionRepository) ListRecent(sessionID string, limit int) ([]*Recognition, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if sessionID != "" {
		rows, err = r.db.Query(
			`SELECT id, session_id, label, confidence, frame, created_at
			 FROM recognitions WHERE session_id = ?
			 ORDER BY created_at DESC, id DESC LIMIT ?`,
			sessionID, limit,
		)
	} else {
		rows, err = r.db.Query(
			`SELECT id, session_id, label, confidence, frame, created_at
			 FROM recognitions ORDER BY created_at DESC, id DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recognition
	for rows.Next() {
		rec := &Recognition{}
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Label, &rec.Confidence, &rec.Frame, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}
