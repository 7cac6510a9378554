package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"billcycle/internal/core"
	"billcycle/internal/ledger"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
}

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends headers, status and body. A nil body writes nothing after the
// status line.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.data == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// ErrorResponse builds an error payload carrying the request ID.
func ErrorResponse(statusCode int, message, requestID string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Data(ErrorBody{Error: message, RequestID: requestID})
}

var validationErrors = []error{
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrEmptyAlias,
	core.ErrInvalidPaymentMethod,
	core.ErrInvalidWithdrawDay,
	core.ErrUnexpectedCardRef,
	core.ErrNegativeDelay,
}

// statusFor maps domain and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrConfigNotFound):
		return http.StatusNotFound
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
