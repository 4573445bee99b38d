package errors

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUniqueViolation is returned by repositories when a unique constraint rejects a write.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrForeignKeyViolation is returned by repositories when a write references a missing row.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("Username is taken!")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("Someone has already registered with this e-mail address!")
	// ErrUnknownAuthor is returned when a post or comment names an author that does not exist.
	ErrUnknownAuthor = errors.New("User not found.")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("User not found")
	// ErrPostNotFound is returned when a post lookup misses.
	ErrPostNotFound = errors.New("Post not found")
	// ErrInvalidCredentials is returned for any failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("Wrong username and / or password. Please try again!")
	// ErrUnauthorized is returned when a protected operation has no valid session.
	ErrUnauthorized = errors.New("authentication required")
	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("users cannot follow themselves")
)

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError builds a ValidationError with a single field message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Errors:  e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors never leak their text.
func MapErrorToHTTP(err error) *HTTPError {
	var (
		herr *HTTPError
		verr *ValidationError
	)
	switch {
	case errors.As(err, &herr):
		return herr
	case errors.As(err, &verr):
		return &HTTPError{StatusCode: http.StatusUnprocessableEntity, Message: "Validation failed", Fields: verr.Fields}
	case errors.Is(err, ErrUnknownAuthor):
		return &HTTPError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    "Validation failed",
			Fields:     map[string][]string{"author_id": {ErrUnknownAuthor.Error()}},
		}
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrSelfFollow):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
