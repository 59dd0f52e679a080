package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// GetUserCounts returns current user counts by type
func (s *Store) GetUserCounts() (total, permanent, temp int, err error) {
	query := `SELECT
		COUNT(*) as total,
		COALESCE(SUM(CASE WHEN account_type = 'permanent' THEN 1 ELSE 0 END), 0) as permanent,
		COALESCE(SUM(CASE WHEN account_type = 'temp' THEN 1 ELSE 0 END), 0) as temp
	FROM users`

	err = s.db.QueryRow(query).Scan(&total, &permanent, &temp)
	return
}

// DeleteExpiredTempUsers removes temporary users past their expiry
func (s *Store) DeleteExpiredTempUsers() (int64, error) {
	query := `DELETE FROM users WHERE account_type = 'temp' AND expires_at < ?`
	result, err := s.db.Exec(query, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CreateUser creates user with transaction isolation to prevent race conditions
func (s *Store) CreateUser(record UserRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.userExists(tx, record.Username, record.Email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("username or email already exists")
	}

	query := `INSERT INTO users (
		user_id, username, email, password_hash, account_type, created_at, expires_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	accountType := record.AccountType
	if accountType == "" {
		accountType = "temp"
	}

	_, err = tx.Exec(query,
		record.UserID, record.Username, record.Email,
		record.PasswordHash, accountType, record.CreatedAt, record.ExpiresAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteUserByID removes a user by ID
func (s *Store) DeleteUserByID(userID string) error {
	query := `DELETE FROM users WHERE user_id = ?`
	_, err := s.db.Exec(query, userID)
	return err
}

// PromoteToPermanent upgrades a temp user to permanent
func (s *Store) PromoteToPermanent(userID string) error {
	query := `UPDATE users SET account_type = 'permanent', expires_at = NULL WHERE user_id = ?`
	_, err := s.db.Exec(query, userID)
	return err
}

// UpdateUserLastLoginSync updates the last login timestamp synchronously
func (s *Store) UpdateUserLastLoginSync(userID string, when time.Time) error {
	query := `UPDATE users SET last_login_at = ? WHERE user_id = ?`
	_, err := s.db.Exec(query, when, userID)
	return err
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(userID string) (*UserRecord, error) {
	return s.getUser(`user_id = ?`, userID)
}

// GetUserByUsername retrieves a user by username (case-insensitive)
func (s *Store) GetUserByUsername(username string) (*UserRecord, error) {
	return s.getUser(`username = ? COLLATE NOCASE`, username)
}

// GetUserByEmail retrieves a user by email (case-insensitive)
func (s *Store) GetUserByEmail(email string) (*UserRecord, error) {
	return s.getUser(`email = ? COLLATE NOCASE`, email)
}

func (s *Store) getUser(where string, arg any) (*UserRecord, error) {
	var user UserRecord
	query := `SELECT user_id, username, email, password_hash, account_type, created_at, expires_at, last_login_at
		FROM users WHERE ` + where

	err := s.db.QueryRow(query, arg).Scan(
		&user.UserID, &user.Username, &user.Email,
		&user.PasswordHash, &user.AccountType, &user.CreatedAt,
		&user.ExpiresAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users ordered by creation time
func (s *Store) ListUsers() ([]UserRecord, error) {
	query := `SELECT user_id, username, email, password_hash, account_type, created_at, expires_at, last_login_at
		FROM users ORDER BY created_at ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		var user UserRecord
		if err := rows.Scan(
			&user.UserID, &user.Username, &user.Email,
			&user.PasswordHash, &user.AccountType, &user.CreatedAt,
			&user.ExpiresAt, &user.LastLoginAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// userExists verifies username/email uniqueness within a transaction
func (s *Store) userExists(tx *sql.Tx, username, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`
	args := []any{username}

	if email != "" {
		query += ` OR email = ? COLLATE NOCASE`
		args = append(args, email)
	}

	if err := tx.QueryRow(query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
