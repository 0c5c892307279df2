// Package queue defines the audit messages exchanged over the broker and
// the consumer that persists them.
package queue

// Audit event types.
const (
	EventUserRegistered      = "user.registered"
	EventUserLoggedIn        = "user.logged_in"
	EventUserLoggedOut       = "user.logged_out"
	EventUserPasswordChanged = "user.password_changed"
	EventUserDeleted         = "user.deleted"
	EventReportUploaded      = "report.uploaded"
	EventReportUpdated       = "report.updated"
	EventReportFileReplaced  = "report.file_replaced"
	EventReportDeleted       = "report.deleted"
)

// AuditEvent is published after a state change has been committed.  It
// carries identifiers only; consumers never see passwords, tokens or file
// contents.
type AuditEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	ReportID   uint64 `json:"report_id,omitempty"`
	IP         string `json:"ip,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	OccurredAt string `json:"occurred_at"` // RFC3339, UTC
}
