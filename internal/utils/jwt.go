package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every way a presented token can fail to parse:
// bad signature, wrong algorithm, malformed claims.
var ErrInvalidToken = errors.New("invalid token")

// AuthClaims are the claims carried by an auth token.  Subject holds the
// user id; SessionID must still match the user's stored session id for the
// token to be accepted.
type AuthClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// UserID parses the numeric subject.
func (c AuthClaims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// NewAuthToken builds and signs an HS256 JWT binding userID to sessionID.
// There is no exp claim: tokens die when the session id is rotated.
func NewAuthToken(secret string, userID uint64, sessionID string) (string, error) {
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatUint(userID, 10),
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
		SessionID: sessionID,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseAuthToken verifies the signature and algorithm of raw and returns
// its claims.
func ParseAuthToken(secret, raw string) (AuthClaims, error) {
	var claims AuthClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return AuthClaims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return AuthClaims{}, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return AuthClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// NewSessionID returns a random UUIDv4 in its 32 character hex form.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
