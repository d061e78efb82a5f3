package types

import "fmt"

// Error types reported to API clients
const (
	ErrorTypeValidation = "validation"
	ErrorTypeAuth       = "auth"
	ErrorTypeForbidden  = "forbidden"
	ErrorTypeNotFound   = "not_found"
	ErrorTypeConflict   = "conflict"
	ErrorTypeUnknown    = "unknown"
)

// CustomError is an error with an HTTP status and a client-facing type.
// Field names the offending input for validation errors.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d: %s: %s [type: %s]", e.Code, e.Field, e.Message, e.Type)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
