package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-api/internal/api/shared"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/redact"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handlePathUUID extracts a UUID path parameter and writes an error response
// when it is missing or malformed.
func handlePathUUID(w http.ResponseWriter, r *http.Request, paramName string, log *slog.Logger) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		message := "Invalid request format"
		if errors.Is(err, shared.ErrEmptyBody) {
			message = GetSafeErrorMessage(err)
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, err, "")
		return false
	}

	return true
}

// parseCardFilter reads folder_id, uncategorized and q from the query string.
func parseCardFilter(r *http.Request) (store.CardFilter, error) {
	q := r.URL.Query()
	var filter store.CardFilter

	if raw := q.Get("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.NewValidationError("folder_id", "has invalid format", domain.ErrInvalidID)
		}
		filter.FolderID = &id
	}

	if raw := q.Get("uncategorized"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.NewValidationError("uncategorized", "must be a boolean", domain.ErrValidation)
		}
		filter.Uncategorized = v
	}

	filter.Search = strings.TrimSpace(q.Get("q"))
	return filter, nil
}

// resolveLimit applies the default session size to an optional requested limit.
func resolveLimit(requested *int, defaultLimit int) (int, error) {
	if requested == nil {
		return defaultLimit, nil
	}
	if *requested < 0 {
		return 0, domain.NewValidationError("limit", fmt.Sprintf("must not be negative, got %d", *requested), domain.ErrValidation)
	}
	return *requested, nil
}
