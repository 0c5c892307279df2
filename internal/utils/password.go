package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// peppered normalises the password to NFKD and runs it through
// HMAC-SHA256 keyed with the application salt.  The base64 digest is 44
// bytes, which keeps every input inside bcrypt's 72 byte limit.
func peppered(plain, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(norm.NFKD.String(plain)))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// HashPassword returns bcrypt hash of the peppered password using the given cost.
func HashPassword(plain, salt string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword(peppered(plain, salt), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain, salt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), peppered(plain, salt)) == nil
}

// DummyHash is compared against when a login names an unknown email so
// the response takes as long as a wrong password would.
func DummyHash(salt string, cost int) string {
	h, err := HashPassword("not-a-real-password", salt, cost)
	if err != nil {
		return ""
	}
	return h
}
