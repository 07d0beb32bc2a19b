package dto

// AuditLogQuery filters the audit trail listing. Limit above 100 is
// rejected at the handler boundary before this query is built.
type AuditLogQuery struct {
	Limit  int
	Offset int
	UserID string
	Action string
}
