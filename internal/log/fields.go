package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldEntrantID   = "entrant_id"
	FieldDisplayName = "display_name"
	FieldAmount      = "amount"
	FieldMonth       = "month"
	FieldBoardKind   = "board_kind"
	FieldEntries     = "entries"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentRollover  = "rollover"
	ComponentBoard     = "board"
	ComponentRateLimit = "rate_limit"
)
