package middleware // reusable HTTP middleware: token auth, rate limiting, security headers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/report-vault/internal/model"
	"github.com/iliyamo/report-vault/internal/service"
)

// MsgNotAuthenticated is the body of every 401 produced by the guard.
const MsgNotAuthenticated = "You are not authenticated."

// Authenticator resolves a raw token to its user.  *service.TokenManager
// is the only implementation; the guard does not care how tokens work.
type Authenticator interface {
	Validate(ctx context.Context, token string) (*model.User, error)
}

// TokenAuth returns an Echo middleware that rejects requests without a
// valid auth token.  On success the resolved user is stored in the
// context (see CurrentUser) so handlers never look the token up again.
func TokenAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ExtractToken(c.Request())
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgNotAuthenticated)
			}

			u, err := auth.Validate(c.Request().Context(), raw)
			if errors.Is(err, service.ErrUnauthenticated) {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgNotAuthenticated)
			}
			if err != nil {
				// store failure, not a bad token
				return err
			}

			setUser(c, u)
			return next(c)
		}
	}
}

// ExtractToken reads the token from "Authorization: Token <v>".  The
// "Bearer" scheme and the Authentication-Token header are accepted as
// well.
func ExtractToken(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if !ok {
			return ""
		}
		switch strings.ToLower(scheme) {
		case "token", "bearer":
			return strings.TrimSpace(value)
		default:
			return ""
		}
	}
	return strings.TrimSpace(r.Header.Get("Authentication-Token"))
}
