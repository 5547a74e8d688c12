package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"centesimi/internal/core"
)

const (
	// Routing keys double as the event type inside the envelope.
	EventEntryRecorded = "entry.recorded"
	EventEntryDeleted  = "entry.deleted"

	messageVersion = 1
)

// EntryEvent is the JSON envelope published for every ledger write. The
// category fields are denormalized so consumers never have to query the
// ledger store.
type EntryEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	Version        int       `json:"version"`
	ConversationID int64     `json:"conversation_id"`
	EntryID        int64     `json:"entry_id"`
	CategoryID     int64     `json:"category_id"`
	CategoryAlias  string    `json:"category_alias"`
	CategoryName   string    `json:"category_name"`
	AmountCents    int64     `json:"amount_cents"`
	OccurredAt     int64     `json:"occurred_at"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewEntryEvent(eventType string, entry core.Entry, category core.Category) *EntryEvent {
	return &EntryEvent{
		EventID:        uuid.NewString(),
		Type:           eventType,
		Version:        messageVersion,
		ConversationID: category.ConversationID,
		EntryID:        entry.ID,
		CategoryID:     category.ID,
		CategoryAlias:  category.Alias,
		CategoryName:   category.Name,
		AmountCents:    entry.AmountCents,
		OccurredAt:     entry.OccurredAt,
		Timestamp:      time.Now(),
	}
}

func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var msg EntryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
