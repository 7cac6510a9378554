package log

import "billcycle/internal/core"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldCardID      = "card_id"
	FieldCardName    = "card_name"
	FieldWithdrawDay = "withdraw_day"
	FieldCycleStart  = "cycle_start"
	FieldCycleEnd    = "cycle_end"
	FieldDueDate     = "due_date"
	FieldReference   = "reference_date"
	FieldAmountCents = "amount_cents"
	FieldCount       = "count"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentReport   = "report"
	ComponentNotifier = "notifier"
	ComponentSheets   = "sheets"
	ComponentBackend  = "backend"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpList       = "list"
	OpDeactivate = "deactivate"
	OpReport     = "report"
	OpNotify     = "notify"
	OpExport     = "export"
	OpMigrate    = "migrate"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCard adds the card identity and its withdraw day
func (f LogFields) WithCard(cfg core.PaymentMethodConfig) LogFields {
	f[FieldCardID] = cfg.ID
	f[FieldCardName] = cfg.DisplayName()
	f[FieldWithdrawDay] = cfg.WithdrawDay
	return f
}

// WithCycle adds the cycle boundaries
func (f LogFields) WithCycle(c core.BillingCycle) LogFields {
	f[FieldCycleStart] = c.Start.String()
	f[FieldCycleEnd] = c.End.String()
	f[FieldDueDate] = c.Due.String()
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
