package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Entry is one stored key/value pair.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Storage is the key/value space of a single origin (API base URL), the
// terminal counterpart of a browser's per-origin local storage.
type Storage struct {
	store  *Store
	origin string
}

func (s *Store) Storage(origin string) *Storage {
	return &Storage{store: s, origin: origin}
}

func (st *Storage) Origin() string { return st.origin }

// Get returns the value for key; ok is false when the key is absent.
func (st *Storage) Get(key string) (string, bool, error) {
	var value string
	err := st.store.db.QueryRow(
		`SELECT value FROM storage WHERE origin = ? AND key = ?`, st.origin, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (st *Storage) Set(key, value string) error {
	return st.setWith(st.store.db, key, value)
}

func (st *Storage) Delete(key string) error {
	return st.deleteWith(st.store.db, key)
}

// Entries lists every key stored for the origin.
func (st *Storage) Entries() ([]Entry, error) {
	rows, err := st.store.db.Query(
		`SELECT key, value, updated_at FROM storage WHERE origin = ? ORDER BY key`, st.origin,
	)
	if err != nil {
		return nil, fmt.Errorf("list storage: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var updatedAt string
		if err := rows.Scan(&e.Key, &e.Value, &updatedAt); err != nil {
			return nil, err
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (st *Storage) setWith(x execer, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := x.Exec(
		`INSERT INTO storage (origin, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(origin, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		st.origin, key, value, now,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (st *Storage) deleteWith(x execer, key string) error {
	_, err := x.Exec(`DELETE FROM storage WHERE origin = ? AND key = ?`, st.origin, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// tx runs fn in a transaction so multi-key writes land atomically.
func (st *Storage) tx(fn func(x execer) error) error {
	tx, err := st.store.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
