package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/report-vault/internal/database"
	"github.com/iliyamo/report-vault/internal/model"
)

const userColumns = `id, email, password_hash, session_id, login_count,
	last_login_at, current_login_at, last_login_ip, current_login_ip,
	active, created_at, updated_at`

// UserRepo is the credential store.  It works on either the pool or a
// transaction.
type UserRepo struct{ db database.DBTX }

func NewUserRepo(db database.DBTX) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and fills in its ID.  A duplicate email returns
// ErrEmailExists even when the caller's pre-check raced another insert.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, session_id, login_count, active, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		u.Email, u.PasswordHash, u.SessionID, u.LoginCount, u.Active, now, now)
	if err != nil {
		if isDuplicateEmail(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var (
		u                 model.User
		lastAt, currentAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.SessionID, &u.LoginCount,
		&lastAt, &currentAt, &u.LastLoginIP, &u.CurrentLoginIP,
		&u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if lastAt.Valid {
		t := lastAt.Time
		u.LastLoginAt = &t
	}
	if currentAt.Valid {
		t := currentAt.Time
		u.CurrentLoginAt = &t
	}
	return &u, nil
}

// RecordLogin shifts the current login fields into the last login fields,
// stores the new login and bumps the counter.  The session id is left alone.
func (r *UserRepo) RecordLogin(ctx context.Context, id uint64, ip string, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE users
		 SET last_login_at = current_login_at,
		     last_login_ip = current_login_ip,
		     current_login_at = ?,
		     current_login_ip = ?,
		     login_count = login_count + 1,
		     updated_at = ?
		 WHERE id = ?`,
		at, ip, at, id)
}

// UpdatePassword stores a new hash together with a new session id so that
// no token issued under the old password survives.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash, sessionID string) error {
	return r.execOne(ctx,
		`UPDATE users SET password_hash = ?, session_id = ?, updated_at = ? WHERE id = ?`,
		hash, sessionID, time.Now().UTC(), id)
}

// RotateSession replaces the session id.
func (r *UserRepo) RotateSession(ctx context.Context, id uint64, sessionID string) error {
	return r.execOne(ctx,
		`UPDATE users SET session_id = ?, updated_at = ? WHERE id = ?`,
		sessionID, time.Now().UTC(), id)
}

// Delete removes the user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
}

// execOne runs a statement that must touch exactly one user.
func (r *UserRepo) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
