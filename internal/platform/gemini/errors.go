package gemini

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// isTransient reports whether a failed API call is worth retrying.
// Rate limits, server errors and transport errors are transient; other
// API errors (bad request, permission, not found) are not.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Code >= http.StatusInternalServerError
	}

	return true
}
