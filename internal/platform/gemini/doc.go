// Package gemini implements the generation ports on Google's Gemini API.
//
// Requests ask for structured JSON output with an explicit response schema,
// so parsing is a plain json.Unmarshal followed by field checks. Prompts are
// text/template files embedded from the templates directory.
//
// Transient failures (rate limiting, 5xx, network errors) are retried with
// exponential backoff and jitter. Safety blocks and malformed responses are
// returned at once as generation.ErrContentBlocked and
// generation.ErrInvalidResponse.
package gemini
