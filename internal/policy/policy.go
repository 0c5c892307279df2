// Package policy decides whether a candidate password is safe to store.
//
// An Evaluator runs its checks in order and stops at the first one that
// rejects the password. Checks that need the network report transport
// failures as errors, never as verdicts.
package policy

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iliyamo/report-vault/internal/config"
)

// Verdict is the outcome of an evaluation.  Reason names the check that
// rejected the password and is empty when Safe is true.
type Verdict struct {
	Safe   bool
	Reason string
}

var safe = Verdict{Safe: true}

// Check is one rule of the policy.  ok=false rejects the password.
type Check interface {
	Name() string
	Check(ctx context.Context, email, password string) (ok bool, err error)
}

type Evaluator struct {
	checks []Check
}

func New(checks ...Check) *Evaluator {
	return &Evaluator{checks: checks}
}

// NewFromConfig assembles the production pipeline: length, complexity,
// breached corpus and, when enabled, the pwned range lookup.
func NewFromConfig(cfg config.Config) (*Evaluator, error) {
	breached, err := NewBreachedCheck(cfg.BreachedPasswordsFile)
	if err != nil {
		return nil, err
	}
	checks := []Check{LengthCheck{Min: MinLength, Max: MaxLength}, ComplexityCheck{MinScore: MinScore}, breached}
	if cfg.PwnedCheckEnabled {
		client := &http.Client{Timeout: cfg.PwnedTimeout}
		checks = append(checks, NewPwnedCheck(cfg.PwnedAPIURL, client))
	}
	return New(checks...), nil
}

// Evaluate runs every check against password.  email feeds the
// complexity check so passwords built from the address are rejected.
func (e *Evaluator) Evaluate(ctx context.Context, email, password string) (Verdict, error) {
	for _, c := range e.checks {
		ok, err := c.Check(ctx, email, password)
		if err != nil {
			return Verdict{}, fmt.Errorf("%s check: %w", c.Name(), err)
		}
		if !ok {
			return Verdict{Reason: c.Name()}, nil
		}
	}
	return safe, nil
}
