package repository

import (
	"context"

	"github.com/iliyamo/report-vault/internal/database"
)

// RoleRepo reads the user/role association.  Roles are informational only.
type RoleRepo struct{ db database.DBTX }

func NewRoleRepo(db database.DBTX) *RoleRepo { return &RoleRepo{db: db} }

// NamesForUser returns the role names attached to userID, sorted by name.
func (r *RoleRepo) NamesForUser(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ro.name FROM roles ro
		 JOIN user_roles ur ON ur.role_id = ro.id
		 WHERE ur.user_id = ?
		 ORDER BY ro.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DeleteForUser detaches every role from userID.
func (r *RoleRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID)
	return err
}
