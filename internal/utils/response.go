package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/buildnet/internal/types"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// ValidationErrorResponse sends a 400 naming the offending field
func ValidationErrorResponse(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponseStruct{
		Status:    fiber.StatusBadRequest,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      types.ErrorTypeValidation,
		Field:     field,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, types.ErrorTypeNotFound)
}

// MutationSuccessResponse sends a success response for mutations without a body of their own
func MutationSuccessResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:   message,
		Ok:        true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// PageResponse sends one page of a listing with its navigation links
func PageResponse[T any](c *fiber.Ctx, page types.Page[T]) error {
	items := page.Items
	if items == nil {
		items = []T{}
	}

	body := PageResponseStruct[T]{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
	if page.HasNext() {
		next := page.NextPage()
		body.Next = &next
	}
	if page.HasPrev() {
		prev := page.PrevPage()
		body.Prev = &prev
	}

	return c.Status(fiber.StatusOK).JSON(body)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
	Field     string `json:"field,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
}

// PageResponseStruct defines the schema for paginated listings
type PageResponseStruct[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Next    *int  `json:"next"`
	Prev    *int  `json:"prev"`
}
