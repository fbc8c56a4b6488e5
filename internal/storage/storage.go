// Package storage provides the durable key-value store behind the
// conversation log, settings and greeting sentinels.
package storage

import (
	"database/sql"
	"embed"
	"errors"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var ddl embed.FS

// DB is a string-keyed store on a local sqlite file.
type DB struct{ *sql.DB }

// New opens (creating if needed) the database at path and applies the schema.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// Get returns the value for key. The second result reports whether the key
// exists at all, so callers can tell "absent" from "empty".
func (d *DB) Get(key string) (string, bool, error) {
	var value string
	err := d.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set writes key=value, replacing any previous value.
func (d *DB) Set(key, value string) error {
	_, err := d.Exec(`
        INSERT INTO kv (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value
    `, key, value)
	return err
}

// Remove deletes key. Removing an absent key is not an error.
func (d *DB) Remove(key string) error {
	_, err := d.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}
