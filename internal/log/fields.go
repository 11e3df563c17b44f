package log

// Field names shared by every component.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldDate         = "date"
	FieldActivityID   = "activity_id"
	FieldActivityName = "activity_name"
	FieldAmountCents  = "amount_cents"
	FieldCurrency     = "currency"
	FieldDocumentHash = "document_hash"
	FieldDays         = "days"
	FieldSnapshotID   = "snapshot_id"
	FieldTrigger      = "trigger"
)

// Component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentCalendar = "calendar"
	ComponentOverlay  = "overlay"
	ComponentWorker   = "worker"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Overlay operations.
const (
	OpCreate = "create"
	OpDelete = "delete"
)

// Fields builds slog key/value pairs in insertion order.
type Fields []any

func NewFields() Fields {
	return make(Fields, 0, 8)
}

func (f Fields) With(key string, value any) Fields {
	return append(f, key, value)
}

// WithError adds the error text; a nil error adds nothing.
func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

// WithActivity identifies an activity on a day. An empty name is omitted.
func (f Fields) WithActivity(dateKey, id, name string) Fields {
	f = append(f, FieldDate, dateKey, FieldActivityID, id)
	if name != "" {
		f = append(f, FieldActivityName, name)
	}
	return f
}

// WithCost adds an amount in minor units.
func (f Fields) WithCost(amountCents int64, currency string) Fields {
	return append(f, FieldAmountCents, amountCents, FieldCurrency, currency)
}

// Get returns the value of the first pair with key.
func (f Fields) Get(key string) (any, bool) {
	for i := 0; i+1 < len(f); i += 2 {
		if f[i] == key {
			return f[i+1], true
		}
	}
	return nil, false
}
