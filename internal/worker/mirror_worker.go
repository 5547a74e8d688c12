package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"centesimi/internal/amqp"
	"centesimi/internal/core"
	"centesimi/internal/sheets"
)

// MirrorWorker copies ledger events into the spreadsheet mirror. The sheet is
// append-only: a deletion adds a "deleted" row instead of touching the
// original one, so the ledger store stays the single source of truth.
type MirrorWorker struct {
	writer sheets.AuditWriter
}

func NewMirrorWorker(writer sheets.AuditWriter) *MirrorWorker {
	return &MirrorWorker{writer: writer}
}

// HandleEvent appends one audit row for the event. Errors bubble up so the
// consumer can requeue the delivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.EntryEvent) error {
	row, err := auditRowFor(event)
	if err != nil {
		return err
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append audit row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored entry event",
		"event_id", event.EventID,
		"type", event.Type,
		"entry_id", event.EntryID,
		"row_ref", ref)

	return nil
}

func auditRowFor(event *amqp.EntryEvent) (sheets.AuditRow, error) {
	var action string
	switch event.Type {
	case amqp.EventEntryRecorded:
		action = "recorded"
	case amqp.EventEntryDeleted:
		action = "deleted"
	default:
		return sheets.AuditRow{}, fmt.Errorf("unknown event type %q", event.Type)
	}

	return sheets.AuditRow{
		Date:           time.Unix(event.OccurredAt, 0).UTC().Format("2006-01-02"),
		ConversationID: event.ConversationID,
		CategoryAlias:  event.CategoryAlias,
		CategoryName:   event.CategoryName,
		Amount:         core.FormatCents(event.AmountCents),
		Action:         action,
		EntryID:        event.EntryID,
		EventID:        event.EventID,
	}, nil
}
