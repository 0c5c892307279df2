package policy

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 8
	MaxLength = 128
	MinScore  = 3
)

// LengthCheck counts runes after NFKD normalisation, the same form the
// password is hashed in.
type LengthCheck struct {
	Min, Max int
}

func (LengthCheck) Name() string { return "length" }

func (c LengthCheck) Check(_ context.Context, _, password string) (bool, error) {
	n := utf8.RuneCountInString(norm.NFKD.String(password))
	return n >= c.Min && n <= c.Max, nil
}

// ComplexityCheck rejects passwords that contain the account email or its
// local part, then scores the rest with zxcvbn.
type ComplexityCheck struct {
	MinScore int
}

func (ComplexityCheck) Name() string { return "complexity" }

func (c ComplexityCheck) Check(_ context.Context, email, password string) (bool, error) {
	inputs := emailParts(email)
	lower := strings.ToLower(password)
	for _, in := range inputs {
		if len(in) >= 3 && strings.Contains(lower, in) {
			return false, nil
		}
	}
	return zxcvbn.PasswordStrength(password, inputs).Score >= c.MinScore, nil
}

func emailParts(email string) []string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	parts := []string{email}
	if at := strings.LastIndexByte(email, '@'); at > 0 {
		parts = append(parts, email[:at])
	}
	return parts
}

//go:embed breached.txt
var breachedCorpus string

// BreachedCheck is membership in a set of known breached passwords.
// Comparison is case-insensitive.
type BreachedCheck struct {
	set map[string]struct{}
}

// NewBreachedCheck loads the embedded corpus and, when path is not empty,
// a newline delimited file of extra entries.
func NewBreachedCheck(path string) (*BreachedCheck, error) {
	c := &BreachedCheck{set: make(map[string]struct{}, 128)}
	if err := c.load(strings.NewReader(breachedCorpus)); err != nil {
		return nil, fmt.Errorf("read embedded breached list: %w", err)
	}
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open breached list: %w", err)
	}
	defer f.Close()
	if err := c.load(f); err != nil {
		return nil, fmt.Errorf("read breached list: %w", err)
	}
	return c, nil
}

func (c *BreachedCheck) load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.set[strings.ToLower(line)] = struct{}{}
	}
	return sc.Err()
}

func (*BreachedCheck) Name() string { return "breached" }

func (c *BreachedCheck) Check(_ context.Context, _, password string) (bool, error) {
	_, hit := c.set[strings.ToLower(norm.NFKD.String(password))]
	return !hit, nil
}

// Len reports how many entries are loaded.
func (c *BreachedCheck) Len() int { return len(c.set) }
