package model

import "time"

// Report is an uploaded file plus its metadata.  Every report has exactly
// one owner and every lookup is filtered by (id, owner).
type Report struct {
	ID          uint64    // reports.id
	OwnerID     uint64    // reports.user_id
	Name        string    // reports.name (sanitised)
	Description string    // reports.description (sanitised)
	FileName    string    // reports.file_name, secure form of the uploaded name
	BlobKey     string    // reports.blob_key, server-generated storage key
	CreatedAt   time.Time // reports.created_at
	UpdatedAt   time.Time // reports.updated_at
}
