package policy

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// PwnedCheck asks a Pwned Passwords style range API how often the
// password appears in known breaches.  Only the first five hex characters
// of the SHA-1 leave the process.
type PwnedCheck struct {
	baseURL string
	client  *http.Client
}

func NewPwnedCheck(baseURL string, client *http.Client) *PwnedCheck {
	if client == nil {
		client = http.DefaultClient
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &PwnedCheck{baseURL: baseURL, client: client}
}

func (*PwnedCheck) Name() string { return "pwned" }

func (p *PwnedCheck) Check(ctx context.Context, _, password string) (bool, error) {
	n, err := p.Count(ctx, password)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Count returns the number of times password was seen in breaches.
func (p *PwnedCheck) Count(ctx context.Context, password string) (int, error) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+prefix, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Add-Padding", "true")
	req.Header.Set("User-Agent", "report-vault")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("range request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("range request: unexpected status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		hash, count, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok || !strings.EqualFold(hash, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return 0, fmt.Errorf("range response: bad count %q", count)
		}
		return n, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("range response: %w", err)
	}
	return 0, nil
}
