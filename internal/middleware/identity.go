package middleware

// identity.go keeps the authenticated user on the Echo context.  Handlers
// read it with CurrentUser; the rate limiter only needs the id.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/report-vault/internal/model"
)

const (
	ctxUser   = "user"
	ctxUserID = "user_id"
)

func setUser(c echo.Context, u *model.User) {
	c.Set(ctxUser, u)
	c.Set(ctxUserID, strconv.FormatUint(u.ID, 10))
}

// CurrentUser returns the user resolved by TokenAuth, or nil on routes
// that are not guarded.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ctxUser).(*model.User)
	return u
}

// userID returns the authenticated user id, or "anon".
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
