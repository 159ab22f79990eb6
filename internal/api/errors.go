package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/hanzi-api/internal/api/shared"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/generation"
	"github.com/phrazzld/hanzi-api/internal/service/auth"
	"github.com/phrazzld/hanzi-api/internal/service/review_session"
	"github.com/phrazzld/hanzi-api/internal/session"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err),
		errors.Is(err, review_session.ErrNoActiveSession):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, review_session.ErrSessionInProgress),
		store.IsDuplicateError(err):
		return http.StatusConflict

	// Unprocessable
	case errors.Is(err, review_session.ErrNoCardsToReview),
		errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Unavailable
	case errors.Is(err, review_session.ErrPersistenceFailed),
		errors.Is(err, generation.ErrUnavailable),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	// Upstream model errors
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrEmptyPatch),
		errors.Is(err, domain.ErrInvalidChatHistory),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, generation.ErrEmptyInput),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &verrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-friendly message for err that does not
// expose internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		verr  *domain.ValidationError
		verrs validator.ValidationErrors
	)

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrFolderNotFound):
		return "Folder not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, review_session.ErrNoActiveSession):
		return "No active review session"
	case errors.Is(err, review_session.ErrSessionInProgress):
		return "A review session is already in progress"
	case errors.Is(err, review_session.ErrNoCardsToReview):
		return "No cards to review"
	case errors.Is(err, review_session.ErrPersistenceFailed):
		return "Review results could not be saved; retry to save them"
	case errors.Is(err, session.ErrInvalidTransition):
		return "Operation not allowed in the current session state"

	case errors.Is(err, generation.ErrUnavailable):
		return "Content generation is not configured"
	case errors.Is(err, generation.ErrContentBlocked):
		return "The request was blocked by the language model's safety filters"
	case errors.Is(err, generation.ErrTransientFailure):
		return "The language model is temporarily unavailable"
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return "The language model returned an unusable response"
	case errors.Is(err, generation.ErrEmptyInput):
		return "At least one word is required"

	case errors.Is(err, domain.ErrInvalidGrade):
		return "Invalid grade: must be one of again, hard, good, easy"
	case errors.Is(err, domain.ErrEmptyPatch):
		return "Update contains no changes"
	case errors.Is(err, domain.ErrInvalidChatHistory):
		return "Invalid chat history: messages must be non-empty and end with a user message"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &verrs):
		return SanitizeValidationError(err)
	case errors.As(err, &verr):
		if verr.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
		}
		return "Validation error"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage returns the message of a sentinel validation error such
// as "validation failed: card pinyin cannot be empty" without the prefix.
// Only domain sentinel text reaches this point.
func validationMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if rest, ok := strings.CutPrefix(msg, domain.ErrValidation.Error()+": "); ok && !strings.Contains(rest, ": ") {
			return strings.ToUpper(rest[:1]) + rest[1:]
		}
	}
	return "Validation error"
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", toSnakeCase(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too short or too small"
	case "max", "lte":
		return "too long or too large"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "must be a UUID"
	case "url":
		return "must be a URL"
	default:
		return "validation failed"
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message for internal errors when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
