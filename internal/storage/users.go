// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/mstacm/dashboard-tui/internal/users"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when no record exists for a username.
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyPending is returned when a request is already awaiting approval.
	ErrAlreadyPending = errors.New("account request already pending")

	// ErrAlreadyProvisioned is returned when the account already exists.
	ErrAlreadyProvisioned = errors.New("account already provisioned")

	// ErrInvalidUsername is returned for an empty username.
	ErrInvalidUsername = errors.New("username is required")
)

// =============================================================================
// RECORD
// =============================================================================

// Record is a stored user with bookkeeping timestamps.
type Record struct {
	Username         string
	Role             string
	Email            string
	AWSAccountStatus string
	RequestedAt      time.Time // zero until the first request
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// User converts the record to its API shape.
func (r *Record) User() users.User {
	return users.User{
		Username:         r.Username,
		Role:             r.Role,
		Email:            r.Email,
		AWSAccountStatus: r.AWSAccountStatus,
	}
}

// =============================================================================
// USER STORE
// =============================================================================

// UserStore is a SQLite-backed user table. Safe for concurrent use.
type UserStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*UserStore, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &UserStore{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *UserStore) Close() error {
	return s.db.Close()
}

const selectColumns = `username, role, email, aws_account_status, requested_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var requested, created, updated int64
	if err := row.Scan(&r.Username, &r.Role, &r.Email, &r.AWSAccountStatus, &requested, &created, &updated); err != nil {
		return nil, err
	}
	if requested > 0 {
		r.RequestedAt = time.UnixMilli(requested)
	}
	r.CreatedAt = time.UnixMilli(created)
	r.UpdatedAt = time.UnixMilli(updated)
	return &r, nil
}

// Get returns the record for username.
func (s *UserStore) Get(ctx context.Context, username string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM users WHERE username = ?`, username)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}
	return r, nil
}

// Upsert inserts r or replaces the role, email and status of an existing
// record. An empty status on insert is stored as "false".
func (s *UserStore) Upsert(ctx context.Context, r Record) error {
	if r.Username == "" {
		return ErrInvalidUsername
	}
	status := r.AWSAccountStatus
	if status == "" {
		status = users.StatusNotRequested
	}
	now := s.now().UnixMilli()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, role, email, aws_account_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			role = excluded.role,
			email = excluded.email,
			aws_account_status = excluded.aws_account_status,
			updated_at = excluded.updated_at`,
		r.Username, r.Role, r.Email, status, now, now)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", r.Username, err)
	}
	return nil
}

// SetStatus overwrites the account status of an existing record.
func (s *UserStore) SetStatus(ctx context.Context, username, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET aws_account_status = ?, updated_at = ? WHERE username = ?`,
		status, s.now().UnixMilli(), username)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", username, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RequestAccount moves an ungranted record to pending and returns it.
func (s *UserStore) RequestAccount(ctx context.Context, username string) (*Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	r, err := scanRecord(tx.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	switch users.ClassifyStatus(r.AWSAccountStatus) {
	case users.StatePending:
		return nil, ErrAlreadyPending
	case users.StateGranted:
		return nil, ErrAlreadyProvisioned
	}

	now := s.now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET aws_account_status = ?, requested_at = ?, updated_at = ? WHERE username = ?`,
		users.StatusPending, now.UnixMilli(), now.UnixMilli(), username); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", username, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	r.AWSAccountStatus = users.StatusPending
	r.RequestedAt = time.UnixMilli(now.UnixMilli())
	r.UpdatedAt = r.RequestedAt
	return r, nil
}

// List returns all records ordered by username.
func (s *UserStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
