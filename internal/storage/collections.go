package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed-width so updated_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CollectionState is the last recorded render of a named collection to one
// output target.
type CollectionState struct {
	Name string
	// Target identifies where and how the view was written, e.g. the
	// output format and file.
	Target         string
	CollectionID   string
	SortSignature  string
	GroupSignature string
	DataDigest     string
	OutputDigest   string
	Renders        int
	UpdatedAt      time.Time
}

// CollectionRepository provides CRUD operations for the collections table
type CollectionRepository struct {
	db *DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Get returns the state for name and target, or nil if none is recorded.
func (r *CollectionRepository) Get(name, target string) (*CollectionState, error) {
	st, err := scanState(r.db.conn.QueryRow(`
		SELECT name, target, collection_id, sort_signature, group_signature,
		       data_digest, output_digest, renders, updated_at
		FROM collections WHERE name = ? AND target = ?
	`, name, target))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", name, err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(row scanner) (*CollectionState, error) {
	var st CollectionState
	var updatedAt string
	err := row.Scan(
		&st.Name,
		&st.Target,
		&st.CollectionID,
		&st.SortSignature,
		&st.GroupSignature,
		&st.DataDigest,
		&st.OutputDigest,
		&st.Renders,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &st, nil
}

// Put inserts or replaces the state for st.Name and st.Target, incrementing
// its render count.
func (r *CollectionRepository) Put(st *CollectionState) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}
	return r.db.WithTx(func(tx *sql.Tx) error {
		var renders int
		err := tx.QueryRow("SELECT renders FROM collections WHERE name = ? AND target = ?", st.Name, st.Target).Scan(&renders)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		st.Renders = renders + 1

		_, err = tx.Exec(`
			INSERT OR REPLACE INTO collections (
				name, target, collection_id, sort_signature, group_signature,
				data_digest, output_digest, renders, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			st.Name,
			st.Target,
			st.CollectionID,
			st.SortSignature,
			st.GroupSignature,
			st.DataDigest,
			st.OutputDigest,
			st.Renders,
			st.UpdatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to save collection %s: %w", st.Name, err)
		}
		return nil
	})
}

// List returns every recorded render, most recently updated first.
func (r *CollectionRepository) List() ([]*CollectionState, error) {
	rows, err := r.db.conn.Query(`
		SELECT name, target, collection_id, sort_signature, group_signature,
		       data_digest, output_digest, renders, updated_at
		FROM collections ORDER BY updated_at DESC, name ASC, target ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*CollectionState
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

// Delete removes the state for name on every target.
func (r *CollectionRepository) Delete(name string) error {
	_, err := r.db.conn.Exec("DELETE FROM collections WHERE name = ?", name)
	return err
}
