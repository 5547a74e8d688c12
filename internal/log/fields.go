package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldConversationID = "conversation_id"
	FieldCategoryID     = "category_id"
	FieldCategoryAlias  = "alias"
	FieldEntryID        = "entry_id"
	FieldAmountCents    = "amount_cents"
	FieldOccurredAt     = "occurred_at"
	FieldCommand        = "command"
	FieldEventID        = "event_id"
	FieldDuration       = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentRegistry = "registry"
	ComponentLedger   = "ledger"
	ComponentAggr     = "aggregator"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentBot      = "bot"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpResolve  = "resolve"
	OpRecord   = "record"
	OpDelete   = "soft_delete"
	OpList     = "list"
	OpTotal    = "total"
	OpRename   = "rename"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
