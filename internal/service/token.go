package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"

	"github.com/iliyamo/report-vault/internal/database"
	"github.com/iliyamo/report-vault/internal/model"
	"github.com/iliyamo/report-vault/internal/repository"
	"github.com/iliyamo/report-vault/internal/utils"
)

// TokenManager issues and validates auth tokens.  A token names a user and
// the session id that was current when it was issued; rotating the stored
// session id revokes every token issued before.
type TokenManager struct {
	db     *sql.DB
	secret string
}

func NewTokenManager(db *sql.DB, secret string) *TokenManager {
	return &TokenManager{db: db, secret: secret}
}

func (m *TokenManager) Issue(u *model.User) (string, error) {
	return utils.NewAuthToken(m.secret, u.ID, u.SessionID)
}

// Validate resolves raw to an active user whose session id still matches.
// Every failure is ErrUnauthenticated except store errors.
func (m *TokenManager) Validate(ctx context.Context, raw string) (*model.User, error) {
	claims, err := utils.ParseAuthToken(m.secret, raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	id, _ := claims.UserID() // ParseAuthToken already checked the subject

	u, err := repository.NewUserRepo(m.db).GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !u.Active || subtle.ConstantTimeCompare([]byte(u.SessionID), []byte(claims.SessionID)) != 1 {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

// Invalidate rotates the user's session id inside tx.
func (m *TokenManager) Invalidate(ctx context.Context, tx database.DBTX, userID uint64) error {
	return repository.NewUserRepo(tx).RotateSession(ctx, userID, utils.NewSessionID())
}
