package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldRecordID    = "record_id"
	FieldRecordName  = "record_name"
	FieldCategory    = "category"
	FieldSubCategory = "sub_category"
	FieldPrice       = "price"
	FieldStore       = "store"
	FieldGrocery     = "is_grocery"
	FieldSheetRange  = "sheet_range"
	FieldBackend     = "backend"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentRecord  = "record"
	ComponentLookup  = "lookup"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentReceipt = "receipt"
	ComponentTrace   = "trace"
)

// Standard operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpList     = "list"
	OpAppend   = "append"
	OpSync     = "sync"
	OpValidate = "validate"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields is a builder for structured log attributes.
type Fields map[string]any

// NewFields creates an empty Fields builder.
func NewFields() Fields {
	return make(Fields)
}

// WithComponent adds the component field.
func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds the request ID field.
func (f Fields) WithRequestID(requestID string) Fields {
	f[FieldRequestID] = requestID
	return f
}

// WithClientIP adds the client IP field.
func (f Fields) WithClientIP(ip string) Fields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error field when err is non-nil.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds the operation field.
func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the identifying fields of a record.
func (f Fields) WithRecord(id, name, category string, price float64, grocery bool) Fields {
	f[FieldRecordID] = id
	f[FieldRecordName] = name
	f[FieldCategory] = category
	f[FieldPrice] = price
	f[FieldGrocery] = grocery
	return f
}

// WithHTTPRequest adds HTTP request fields.
func (f Fields) WithHTTPRequest(method, path, query, userAgent string) Fields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

// WithHTTPResponse adds HTTP response fields.
func (f Fields) WithHTTPResponse(statusCode int, durationMs int64, success bool) Fields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens the fields into slog key-value pairs.
func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
