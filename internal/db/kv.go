package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Get returns the value stored under key. ok is false when the key has
// never been written.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value and bumping the
// key's version.
func (db *DB) Set(key, value string) error {
	_, err := db.SetVersion(key, value)
	return err
}

// SetVersion is Set, returning the version this write produced. The upsert
// and the version read are one statement, so a concurrent writer cannot
// slip in between.
func (db *DB) SetVersion(key, value string) (int64, error) {
	var version int64
	err := db.QueryRow(`
		INSERT INTO kv (key, value, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = kv.version + 1,
			updated_at = excluded.updated_at
		RETURNING version`,
		key, value, time.Now()).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to set %s: %w", key, err)
	}
	return version, nil
}

// Version returns how many times key has been written, or 0 if never.
func (db *DB) Version(key string) (int64, error) {
	var version int64
	err := db.QueryRow(`SELECT version FROM kv WHERE key = ?`, key).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get version of %s: %w", key, err)
	}
	return version, nil
}
