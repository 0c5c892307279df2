package service

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/report-vault/internal/database"
	"github.com/iliyamo/report-vault/internal/logging"
	"github.com/iliyamo/report-vault/internal/model"
	"github.com/iliyamo/report-vault/internal/policy"
	q "github.com/iliyamo/report-vault/internal/queue"
	"github.com/iliyamo/report-vault/internal/repository"
	"github.com/iliyamo/report-vault/internal/storage"
	"github.com/iliyamo/report-vault/internal/utils"
)

// PasswordPolicy judges candidate passwords.  *policy.Evaluator is the
// production implementation.
type PasswordPolicy interface {
	Evaluate(ctx context.Context, email, password string) (policy.Verdict, error)
}

// HashOptions configure password hashing.
type HashOptions struct {
	Salt string
	Cost int
}

// AuthService owns the account lifecycle: register, login, password
// change, logout and account deletion.
type AuthService struct {
	db     *sql.DB
	tokens *TokenManager
	policy PasswordPolicy
	blobs  storage.Store
	events EventPublisher
	log    logging.Logger
	hash   HashOptions
	dummy  string
}

func NewAuthService(db *sql.DB, tokens *TokenManager, pol PasswordPolicy, blobs storage.Store,
	events EventPublisher, log logging.Logger, hash HashOptions) *AuthService {
	return &AuthService{
		db:     db,
		tokens: tokens,
		policy: pol,
		blobs:  blobs,
		events: events,
		log:    log,
		hash:   hash,
		dummy:  utils.DummyHash(hash.Salt, hash.Cost),
	}
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token string
	User  *model.User
}

// Register creates an active account.  Checks run in a fixed order so a
// duplicate email wins over a weak password.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	users := repository.NewUserRepo(s.db)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := s.checkPassword(ctx, email, password); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password, s.hash.Salt, s.hash.Cost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		SessionID:    utils.NewSessionID(),
		Active:       true,
	}
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		return repository.NewUserRepo(tx).Create(ctx, u)
	})
	if errors.Is(err, repository.ErrEmailExists) {
		// lost a race with a concurrent registration
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newEvent(q.EventUserRegistered, u.ID))
	return u, nil
}

// Login verifies credentials, records the login and issues a token.
// Unknown email, wrong password and inactive account are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	u, err := repository.NewUserRepo(s.db).GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		utils.VerifyPassword(s.dummy, password, s.hash.Salt)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password, s.hash.Salt) || !u.Active {
		return nil, ErrInvalidCredentials
	}

	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repo := repository.NewUserRepo(tx)
		if err := repo.RecordLogin(ctx, u.ID, ip, time.Now().UTC()); err != nil {
			return err
		}
		u, err = repo.GetByID(ctx, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}

	ev := newEvent(q.EventUserLoggedIn, u.ID)
	ev.IP = ip
	s.publish(ctx, ev)
	return &LoginResult{Token: token, User: u}, nil
}

// Roles lists the role names attached to u.
func (s *AuthService) Roles(ctx context.Context, u *model.User) ([]string, error) {
	return repository.NewRoleRepo(s.db).NamesForUser(ctx, u.ID)
}

// ChangePassword replaces the password of u and rotates its session, so
// the token used for this call stops working.
func (s *AuthService) ChangePassword(ctx context.Context, u *model.User, current, next string) error {
	current, next = strings.TrimSpace(current), strings.TrimSpace(next)
	if current == "" || next == "" {
		return ErrInvalidInput
	}
	if !utils.VerifyPassword(u.PasswordHash, current, s.hash.Salt) {
		return ErrInvalidCredentials
	}
	if err := s.checkPassword(ctx, u.Email, next); err != nil {
		return err
	}

	hash, err := utils.HashPassword(next, s.hash.Salt, s.hash.Cost)
	if err != nil {
		return err
	}
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		return repository.NewUserRepo(tx).UpdatePassword(ctx, u.ID, hash, utils.NewSessionID())
	})
	if err != nil {
		return err
	}

	s.publish(ctx, newEvent(q.EventUserPasswordChanged, u.ID))
	return nil
}

// Logout revokes every token issued to u.
func (s *AuthService) Logout(ctx context.Context, u *model.User) error {
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		return s.tokens.Invalidate(ctx, tx, u.ID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, newEvent(q.EventUserLoggedOut, u.ID))
	return nil
}

// DeleteAccount revokes the session and removes the user together with
// its reports and role links.  Blobs are removed after the commit; a
// failed blob delete leaves an orphan file and is only logged.
func (s *AuthService) DeleteAccount(ctx context.Context, u *model.User) error {
	var keys []string
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		if err := s.tokens.Invalidate(ctx, tx, u.ID); err != nil {
			return err
		}
		reports := repository.NewReportRepo(tx)
		var err error
		if keys, err = reports.BlobKeysByOwner(ctx, u.ID); err != nil {
			return err
		}
		if _, err := reports.DeleteByOwner(ctx, u.ID); err != nil {
			return err
		}
		if err := repository.NewRoleRepo(tx).DeleteForUser(ctx, u.ID); err != nil {
			return err
		}
		return repository.NewUserRepo(tx).Delete(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	for _, k := range keys {
		if err := s.blobs.Delete(ctx, k); err != nil {
			s.log.Warn(ctx, "delete account: blob cleanup failed", "user_id", u.ID, "blob_key", k, "error", err)
		}
	}
	s.publish(ctx, newEvent(q.EventUserDeleted, u.ID))
	return nil
}

func (s *AuthService) checkPassword(ctx context.Context, email, password string) error {
	v, err := s.policy.Evaluate(ctx, email, password)
	if err != nil {
		return err
	}
	if !v.Safe {
		s.log.Info(ctx, "password rejected by policy", "check", v.Reason)
		return ErrVulnerablePassword
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, ev q.AuditEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "audit publish failed", "type", ev.Type, "error", err)
	}
}

// ValidEmail accepts a bare mailbox address (no display name) whose domain
// has at least one dot.
func ValidEmail(email string) bool {
	if len(email) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
