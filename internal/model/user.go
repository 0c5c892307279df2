package model

import "time"

// User represents an account record as stored in the `users` table.
// The struct is internal to the repository and service layers; handlers
// shape their own response payloads so PasswordHash and SessionID never
// reach a client.
//
// Fields:
//
//	ID             – primary key identifier of the user.
//	Email          – unique email address, compared exactly as stored.
//	PasswordHash   – bcrypt hash of the peppered password.
//	SessionID      – random value every auth token is bound to; rotating it
//	                 invalidates all previously issued tokens.
//	LoginCount     – number of successful logins.
//	LastLoginAt    – time of the login before the current one (nil if none).
//	CurrentLoginAt – time of the most recent login (nil if never).
//	LastLoginIP    – caller address of the login before the current one.
//	CurrentLoginIP – caller address of the most recent login.
//	Active         – inactive accounts can neither log in nor use tokens.
//	CreatedAt      – timestamp of creation.
//	UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64     // users.id
	Email          string     // users.email
	PasswordHash   string     // users.password_hash
	SessionID      string     // users.session_id
	LoginCount     int        // users.login_count
	LastLoginAt    *time.Time // users.last_login_at (nullable)
	CurrentLoginAt *time.Time // users.current_login_at (nullable)
	LastLoginIP    string     // users.last_login_ip
	CurrentLoginIP string     // users.current_login_ip
	Active         bool       // users.active
	CreatedAt      time.Time  // users.created_at
	UpdatedAt      time.Time  // users.updated_at
}

// Role represents a row in the `roles` table.  Roles are attached to users
// through `user_roles`; no endpoint is gated on them.
type Role struct {
	ID          uint64 // roles.id
	Name        string // roles.name
	Description string // roles.description
}
