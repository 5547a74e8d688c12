package sheets

import (
	"context"
)

// AuditRow is one line of the spreadsheet mirror. Every ledger event appends
// a row; deletions append rather than remove, so the sheet stays a full
// history of what happened.
type AuditRow struct {
	Date           string // occurred_at as YYYY-MM-DD (UTC)
	ConversationID int64
	CategoryAlias  string
	CategoryName   string
	Amount         string // whole cents rendered as a decimal string
	Action         string // "recorded" or "deleted"
	EntryID        int64
	EventID        string
}

// AuditWriter is the outbound port for the spreadsheet mirror.
type AuditWriter interface {
	Append(ctx context.Context, row AuditRow) (rowRef string, err error)
}
