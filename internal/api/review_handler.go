package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/hanzi-api/internal/api/shared"
	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/redact"
	"github.com/phrazzld/hanzi-api/internal/service/review_session"
)

// ReviewHandler exposes the review session over HTTP.
type ReviewHandler struct {
	manager      review_session.Manager
	defaultLimit int
	logger       *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler. defaultLimit is used when a
// start request names no limit.
func NewReviewHandler(manager review_session.Manager, defaultLimit int, logger *slog.Logger) *ReviewHandler {
	if manager == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("manager cannot be nil for ReviewHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		manager:      manager,
		defaultLimit: defaultLimit,
		logger:       logger.With(slog.String("component", "review_handler")),
	}
}

// StartSession handles POST /review/session requests.
func (h *ReviewHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StartReviewRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req, log) {
			return
		}
	}

	limit, err := resolveLimit(req.Limit, h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	snap, err := h.manager.Start(r.Context(), review_session.StartOptions{
		FolderID:      req.FolderID,
		Uncategorized: req.Uncategorized,
		Limit:         limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, snapshotToResponse(snap))
}

// GetSession handles GET /review/session requests.
func (h *ReviewHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.manager.Snapshot(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snap))
}

// SubmitAttempt handles POST /review/session/attempt requests.
func (h *ReviewHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AttemptRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	snap, err := h.manager.SubmitAttempt(r.Context(), req.Attempt)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snap))
}

// Reveal handles POST /review/session/reveal requests.
func (h *ReviewHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	snap, err := h.manager.Reveal(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snap))
}

// Grade handles POST /review/session/grade requests. When the grade finishes
// the session the results are saved; if saving fails the response is 503 and
// carries the session so the client can retry.
func (h *ReviewHandler) Grade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GradeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	grade, err := domain.ParseReviewGrade(req.Grade)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	snap, err := h.manager.Grade(r.Context(), grade)
	h.respondWithSnapshot(w, r, snap, err)
}

// RetryPersist handles POST /review/session/persist requests.
func (h *ReviewHandler) RetryPersist(w http.ResponseWriter, r *http.Request) {
	snap, err := h.manager.RetryPersist(r.Context())
	h.respondWithSnapshot(w, r, snap, err)
}

// AbortSession handles DELETE /review/session requests.
func (h *ReviewHandler) AbortSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Abort(r.Context()); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondNoContent(w)
}

func (h *ReviewHandler) respondWithSnapshot(
	w http.ResponseWriter,
	r *http.Request,
	snap *review_session.Snapshot,
	err error,
) {
	if err == nil {
		shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snap))
		return
	}

	if errors.Is(err, review_session.ErrPersistenceFailed) && snap != nil {
		log := logger.FromContextOrDefault(r.Context(), h.logger)
		log.Error("review results not saved",
			slog.String("error", redact.Error(err)),
			slog.Int("result_count", len(snap.Results)))

		status := MapErrorToStatusCode(err)
		shared.RespondWithJSON(w, r, status, SessionErrorResponse{
			Error:   GetSafeErrorMessage(err),
			Code:    status,
			TraceID: shared.GetTraceID(r.Context()),
			Session: snapshotToResponse(snap),
		})
		return
	}

	HandleAPIError(w, r, err, "")
}
