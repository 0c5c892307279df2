// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when an insert collides with the unique email
// index.  The service translates it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user row matches.
var ErrUserNotFound = errors.New("user not found")

// ErrReportNotFound is returned when a report does not exist or belongs to
// another user.  The two cases are deliberately the same error.
var ErrReportNotFound = errors.New("report not found")

// isDuplicateEmail reports whether err is a unique-constraint violation on
// users.email: MySQL 1062 naming uq_users_email, or SQLite naming the
// column.  Collisions on other unique keys are not an existing account.
func isDuplicateEmail(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062 && strings.Contains(me.Message, "uq_users_email")
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}
