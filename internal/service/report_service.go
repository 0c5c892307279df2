package service

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/iliyamo/report-vault/internal/database"
	"github.com/iliyamo/report-vault/internal/logging"
	"github.com/iliyamo/report-vault/internal/model"
	q "github.com/iliyamo/report-vault/internal/queue"
	"github.com/iliyamo/report-vault/internal/repository"
	"github.com/iliyamo/report-vault/internal/storage"
	"github.com/iliyamo/report-vault/internal/utils"
)

const (
	maxNameLen        = 255
	maxDescriptionLen = 1024
)

// ReportService is ownership scoped CRUD over reports.  Every lookup is
// filtered by (id, owner): a report owned by someone else is reported as
// ErrNotFound, exactly like a missing one.
type ReportService struct {
	db     *sql.DB
	blobs  storage.Store
	events EventPublisher
	log    logging.Logger
}

func NewReportService(db *sql.DB, blobs storage.Store, events EventPublisher, log logging.Logger) *ReportService {
	return &ReportService{db: db, blobs: blobs, events: events, log: log}
}

// FileInput is an uploaded file as received from the client.
type FileInput struct {
	Name string // client supplied filename, untrusted
	Body io.Reader
}

// UploadInput holds the fields of a new report.
type UploadInput struct {
	Name        string
	Description string
	File        *FileInput
}

// MetadataInput holds an update; nil fields are left unchanged.
type MetadataInput struct {
	Name        *string
	Description *string
}

func (s *ReportService) List(ctx context.Context, owner *model.User) ([]*model.Report, error) {
	return repository.NewReportRepo(s.db).ListByOwner(ctx, owner.ID)
}

// Upload stores the file and creates the report row in one transaction.
// If the commit fails the freshly written blob is removed again.
func (s *ReportService) Upload(ctx context.Context, owner *model.User, in UploadInput) (*model.Report, error) {
	name := utils.SanitizeText(in.Name, maxNameLen)
	desc := utils.SanitizeText(in.Description, maxDescriptionLen)
	if name == "" || desc == "" || in.File == nil || in.File.Body == nil {
		return nil, ErrInvalidInput
	}
	fileName, err := cleanFileName(in.File.Name)
	if err != nil {
		return nil, err
	}

	rep := &model.Report{
		OwnerID:     owner.ID,
		Name:        name,
		Description: desc,
		FileName:    fileName,
		BlobKey:     newBlobKey(fileName),
	}
	written := false
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		if err := repository.NewReportRepo(tx).Create(ctx, rep); err != nil {
			return err
		}
		if err := s.blobs.Put(ctx, rep.BlobKey, in.File.Body); err != nil {
			return err
		}
		written = true
		return nil
	})
	if err != nil {
		if written {
			s.removeBlob(ctx, rep.BlobKey)
		}
		return nil, err
	}

	ev := newEvent(q.EventReportUploaded, owner.ID)
	ev.ReportID, ev.FileName = rep.ID, rep.FileName
	s.publish(ctx, ev)
	return rep, nil
}

func (s *ReportService) Read(ctx context.Context, owner *model.User, id uint64) (*model.Report, error) {
	rep, err := repository.NewReportRepo(s.db).GetByIDAndOwner(ctx, id, owner.ID)
	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, ErrNotFound
	}
	return rep, err
}

// Update changes the name and/or description.  At least one field must be
// present and non-empty after sanitising.
func (s *ReportService) Update(ctx context.Context, owner *model.User, id uint64, in MetadataInput) (*model.Report, error) {
	if in.Name == nil && in.Description == nil {
		return nil, ErrInvalidInput
	}
	var name, desc string
	if in.Name != nil {
		if name = utils.SanitizeText(*in.Name, maxNameLen); name == "" {
			return nil, ErrInvalidInput
		}
	}
	if in.Description != nil {
		if desc = utils.SanitizeText(*in.Description, maxDescriptionLen); desc == "" {
			return nil, ErrInvalidInput
		}
	}

	var rep *model.Report
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repo := repository.NewReportRepo(tx)
		var err error
		if rep, err = repo.GetByIDAndOwner(ctx, id, owner.ID); err != nil {
			return err
		}
		if in.Name != nil {
			rep.Name = name
		}
		if in.Description != nil {
			rep.Description = desc
		}
		return repo.Update(ctx, rep)
	})
	if errors.Is(err, repository.ErrReportNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	ev := newEvent(q.EventReportUpdated, owner.ID)
	ev.ReportID = rep.ID
	s.publish(ctx, ev)
	return rep, nil
}

// UpdateFile replaces the stored file.  The new blob gets a new key; the
// old blob is removed only after the row points at the new one.
func (s *ReportService) UpdateFile(ctx context.Context, owner *model.User, id uint64, file *FileInput) (*model.Report, error) {
	if file == nil || file.Body == nil {
		return nil, ErrInvalidInput
	}
	fileName, err := cleanFileName(file.Name)
	if err != nil {
		return nil, err
	}

	var (
		rep     *model.Report
		oldKey  string
		newKey  = newBlobKey(fileName)
		written bool
	)
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repo := repository.NewReportRepo(tx)
		var err error
		if rep, err = repo.GetByIDAndOwner(ctx, id, owner.ID); err != nil {
			return err
		}
		oldKey = rep.BlobKey
		if err := s.blobs.Put(ctx, newKey, file.Body); err != nil {
			return err
		}
		written = true
		rep.FileName, rep.BlobKey = fileName, newKey
		return repo.Update(ctx, rep)
	})
	if err != nil {
		if written {
			s.removeBlob(ctx, newKey)
		}
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.removeBlob(ctx, oldKey)

	ev := newEvent(q.EventReportFileReplaced, owner.ID)
	ev.ReportID, ev.FileName = rep.ID, rep.FileName
	s.publish(ctx, ev)
	return rep, nil
}

// Download opens the stored file of a report.  The caller closes the
// reader.
func (s *ReportService) Download(ctx context.Context, owner *model.User, id uint64) (*model.Report, io.ReadCloser, error) {
	rep, err := s.Read(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, rep.BlobKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Warn(ctx, "report blob missing", "report_id", rep.ID, "blob_key", rep.BlobKey)
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return rep, rc, nil
}

// Delete removes the row, then the blob.  A failed blob delete leaves an
// orphan file and is only logged.
func (s *ReportService) Delete(ctx context.Context, owner *model.User, id uint64) error {
	var key string
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		repo := repository.NewReportRepo(tx)
		rep, err := repo.GetByIDAndOwner(ctx, id, owner.ID)
		if err != nil {
			return err
		}
		key = rep.BlobKey
		return repo.DeleteByIDAndOwner(ctx, id, owner.ID)
	})
	if errors.Is(err, repository.ErrReportNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.removeBlob(ctx, key)

	ev := newEvent(q.EventReportDeleted, owner.ID)
	ev.ReportID = id
	s.publish(ctx, ev)
	return nil
}

func (s *ReportService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "blob cleanup failed", "blob_key", key, "error", err)
	}
}

func (s *ReportService) publish(ctx context.Context, ev q.AuditEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn(ctx, "audit publish failed", "type", ev.Type, "error", err)
	}
}

// cleanFileName reduces a client filename to its secure form and checks
// the extension allow-list.
func cleanFileName(raw string) (string, error) {
	name := utils.SecureFilename(raw)
	if name == "" {
		return "", ErrInvalidFile
	}
	if _, ok := utils.AllowedExtension(name); !ok {
		return "", ErrInvalidFile
	}
	return name, nil
}

func newBlobKey(fileName string) string {
	return uuid.NewString() + "_" + fileName
}
