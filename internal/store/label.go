package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Label is one known sign class, index-aligned with the classifier output.
type Label struct {
	Index int
	Name  string
}

// LabelRepository provides access to the sign label catalog.
type LabelRepository struct {
	db *sql.DB
}

// Labels returns the label repository for this store.
func (s *Store) Labels() *LabelRepository {
	return &LabelRepository{db: s.db}
}

// Sync replaces the catalog with the given index-ordered label names. It is
// called at startup with the classes the classifier service reported.
func (r *LabelRepository) Sync(names []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM labels`); err != nil {
		return err
	}
	for i, name := range names {
		if _, err := tx.Exec(`INSERT INTO labels (idx, name) VALUES (?, ?)`, i, name); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List retrieves all labels in classifier index order.
func (r *LabelRepository) List() ([]*Label, error) {
	rows, err := r.db.Query(`SELECT idx, name FROM labels ORDER BY idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*Label
	for rows.Next() {
		l := &Label{}
		if err := rows.Scan(&l.Index, &l.Name); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return labels, nil
}
