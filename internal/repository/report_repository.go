// This file defines the resource store: report rows, each owned by exactly
// one user.  Every read and write that takes a report id also takes the
// owner id, so a report owned by someone else is indistinguishable from a
// missing one.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/report-vault/internal/database"
	"github.com/iliyamo/report-vault/internal/model"
)

const reportColumns = `id, user_id, name, description, file_name, blob_key, created_at, updated_at`

// ReportRepo encapsulates all queries on the reports table.
type ReportRepo struct{ db database.DBTX }

// NewReportRepo binds the repository to a pool or a transaction.
func NewReportRepo(db database.DBTX) *ReportRepo { return &ReportRepo{db: db} }

// Create inserts a report and populates ID and timestamps.
func (r *ReportRepo) Create(ctx context.Context, rep *model.Report) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (user_id, name, description, file_name, blob_key, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		rep.OwnerID, rep.Name, rep.Description, rep.FileName, rep.BlobKey, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	rep.CreatedAt, rep.UpdatedAt = now, now
	return nil
}

// ListByOwner returns all reports of one user ordered by id.
func (r *ReportRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE user_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Report{}
	for rows.Next() {
		rep := new(model.Report)
		if err := scanReport(rows, rep); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndOwner fetches a report only if it belongs to ownerID.
func (r *ReportRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Report, error) {
	rep := new(model.Report)
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ? AND user_id = ?`, id, ownerID)
	if err := scanReport(row, rep); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return rep, nil
}

// Update writes the mutable columns of rep and refreshes updated_at.  The
// owner filter still applies.
func (r *ReportRepo) Update(ctx context.Context, rep *model.Report) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports
		 SET name = ?, description = ?, file_name = ?, blob_key = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		rep.Name, rep.Description, rep.FileName, rep.BlobKey, now, rep.ID, rep.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	rep.UpdatedAt = now
	return nil
}

// DeleteByIDAndOwner removes one report owned by ownerID.
func (r *ReportRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// BlobKeysByOwner lists the storage keys of every report of ownerID.
func (r *ReportRepo) BlobKeysByOwner(ctx context.Context, ownerID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT blob_key FROM reports WHERE user_id = ?`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// DeleteByOwner removes every report of ownerID and returns how many went.
func (r *ReportRepo) DeleteByOwner(ctx context.Context, ownerID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE user_id = ?`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(s rowScanner, rep *model.Report) error {
	return s.Scan(&rep.ID, &rep.OwnerID, &rep.Name, &rep.Description,
		&rep.FileName, &rep.BlobKey, &rep.CreatedAt, &rep.UpdatedAt)
}
