package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/report-vault/internal/logging"
	"github.com/iliyamo/report-vault/internal/policy"
	q "github.com/iliyamo/report-vault/internal/queue"
	"github.com/iliyamo/report-vault/internal/storage"
	"github.com/iliyamo/report-vault/internal/testutil"
)

const strongPassword = "dsafldakjhgdagfd21231gadsgas!DAFa"

// fakePolicy rejects every password listed in weak.
type fakePolicy struct {
	weak map[string]bool
	err  error
}

func (p fakePolicy) Evaluate(_ context.Context, _, password string) (policy.Verdict, error) {
	if p.err != nil {
		return policy.Verdict{}, p.err
	}
	if p.weak[password] {
		return policy.Verdict{Reason: "complexity"}, nil
	}
	return policy.Verdict{Safe: true}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []q.AuditEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev q.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type env struct {
	db      *sql.DB
	blobs   *storage.LocalStore
	events  *recordingPublisher
	tokens  *TokenManager
	auth    *AuthService
	reports *ReportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenDB(t)
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	e := &env{db: db, blobs: blobs, events: &recordingPublisher{}}
	log := logging.Nop()
	e.tokens = NewTokenManager(db, "test-secret")
	pol := fakePolicy{weak: map[string]bool{"password": true, "mydarlingbob": true}}
	e.auth = NewAuthService(db, e.tokens, pol, blobs, e.events, log, HashOptions{Salt: "salt", Cost: bcrypt.MinCost})
	e.reports = NewReportService(db, blobs, e.events, log)
	return e
}
