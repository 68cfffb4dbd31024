// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Limit       int `json:"limit"`
}

func JSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Paginated writes {items-key: items, total, pagination{...}} under data.
func Paginated(
	w http.ResponseWriter,
	key string,
	items any,
	page Page,
	total int,
) {
	OK(w, map[string]any{
		key:     items,
		"total": total,
		"pagination": Pagination{
			CurrentPage: page.Page,
			TotalPages:  page.TotalPages(total),
			Limit:       page.Limit,
		},
	})
}

func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSON(w, appErr.StatusCode, Envelope{
			Message: appErr.Message,
			Code:    appErr.Code,
		})
		return
	}
	InternalServerError(w, err)
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, InvalidInputError(message))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	JSON(w, http.StatusInternalServerError, Envelope{
		Message: "internal server error",
		Code:    "INTERNAL_ERROR",
	})
}

// WriteError maps a service error onto the response taxonomy. resource
// names the entity for 404 and 409 messages.
func WriteError(w http.ResponseWriter, err error, resource string) {
	var (
		statusErr     StatusError
		validationErr *ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		JSON(w, http.StatusBadRequest, Envelope{
			Message: validationErr.Error(),
			Code:    "VALIDATION_ERROR",
		})
	case errors.As(err, &statusErr):
		JSON(w, statusErr.HTTPStatus(), Envelope{
			Message: statusErr.PublicMessage(),
			Code:    statusErr.PublicCode(),
		})
	case IsAppError(err):
		JSONError(w, err)
	case errors.Is(err, ErrNotFound):
		NotFound(w, resource)
	case errors.Is(err, ErrDuplicateKey):
		JSONError(w, DuplicateError(resource))
	case errors.Is(err, ErrTokenExpired):
		JSONError(w, TokenExpiredError())
	case errors.Is(err, ErrTokenRevoked):
		JSONError(w, TokenRevokedError())
	case errors.Is(err, ErrTokenInvalid):
		JSONError(w, TokenInvalidError())
	case errors.Is(err, ErrUnauthorized):
		Unauthorized(w, "")
	case errors.Is(err, ErrForbidden):
		Forbidden(w, "")
	case errors.Is(err, ErrInvalidInput):
		BadRequest(w, "invalid input")
	default:
		InternalServerError(w, err)
	}
}
