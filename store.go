package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend is the durable cache backend. Entries survive restarts.
type SQLiteBackend struct {
	db  *sql.DB
	log *log.Logger
}

const cacheTable string = `
  CREATE TABLE IF NOT EXISTS cache (
      key TEXT PRIMARY KEY,
      entry BLOB NOT NULL,
      stored_at INT NOT NULL
  )
`

func OpenSQLiteBackend(filename string) (*SQLiteBackend, error) {
	logger := log.New(os.Stderr, "(store) ", log.LstdFlags)

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+filename)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err = db.Exec(cacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}
	debugf(logger, "opened %s", filename)

	return &SQLiteBackend{
		db:  db,
		log: logger,
	}, nil
}

func (store *SQLiteBackend) Get(key string) ([]byte, bool, error) {
	row := store.db.QueryRow("SELECT entry FROM cache WHERE key = ?", key)
	var data []byte
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put replaces any existing entry for key as a whole.
func (store *SQLiteBackend) Put(key string, entry []byte, storedAt time.Time) error {
	_, err := store.db.Exec("INSERT OR REPLACE INTO cache (key, entry, stored_at) VALUES (?,?,?)",
		key,
		entry,
		storedAt.UnixMilli(),
	)
	return err
}

// DeleteBefore removes entries stored before cutoff and returns how many went.
func (store *SQLiteBackend) DeleteBefore(cutoff time.Time) (int64, error) {
	res, err := store.db.Exec("DELETE FROM cache WHERE stored_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (store *SQLiteBackend) Close() error {
	if err := store.db.Close(); err != nil {
		store.log.Println("Close failed:", err.Error())
		return err
	}
	return nil
}
