package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultLockTimeout is how long a writer waits for another process to let go
// of the database.
const DefaultLockTimeout = 2 * time.Second

// Store bundles an open match database with its repositories.
type Store struct {
	DB      *sql.DB
	Events  *SQLiteEventRepository
	Matches *SQLiteMatchRepository
	lock    *Lock
}

// Open opens the database at dbPath. A writer first takes the file lock so
// two processes never append to the same ledger; readers skip it.
func Open(dbPath string, writer bool) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var lock *Lock
	if writer {
		l, err := AcquireLock(dbPath, DefaultLockTimeout)
		if err != nil {
			return nil, err
		}
		lock = l
	}

	db, err := InitSQLite(dbPath)
	if err != nil {
		lock.Release()
		return nil, err
	}
	return &Store{
		DB:      db,
		Events:  NewSQLiteEventRepository(db),
		Matches: NewSQLiteMatchRepository(db),
		lock:    lock,
	}, nil
}

// Close closes the database and drops the writer lock.
func (s *Store) Close() error {
	err := s.DB.Close()
	if lerr := s.lock.Release(); err == nil {
		err = lerr
	}
	return err
}
