// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

// Package localstore provides the SQLite-backed durable key/value store the
// offline engine persists snapshots and the pending log through. Failures on
// the storage layer are swallowed and logged: caching and queue durability
// are best-effort and must never block an in-memory operation.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements offline.BlobStore on a SQLite database file. Use
// ":memory:" for throwaway stores in tests.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the local store at path. A nil logger
// defaults to slog.Default().
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// Single connection: serializes writers and keeps ":memory:" databases
	// on one shared handle.
	db.SetMaxOpenConns(1)
	if err := initialize(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

func initialize(db *sql.DB) error {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS _local_kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)
	`); err != nil {
		return fmt.Errorf("failed to create local kv table: %w", err)
	}
	return nil
}

// Get returns the stored value for key. A read failure degrades to absent.
func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM _local_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.Warn("local store read failed", "key", key, "error", err)
		return "", false
	}
	return value, true
}

// Set overwrites the stored value for key. A write failure is logged and
// swallowed; durability for that key is lost until the next write.
func (s *Store) Set(key, value string) {
	_, err := s.db.Exec(`
		INSERT INTO _local_kv (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		s.logger.Warn("local store write failed", "key", key, "error", err)
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
