package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/hanzi-api/internal/api/shared"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/service"
)

// PracticeHandler serves generated study aids: word enrichment, practice
// dialogues and the reflex conversation drill.
type PracticeHandler struct {
	practiceService service.PracticeService
	logger          *slog.Logger
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(practiceService service.PracticeService, logger *slog.Logger) *PracticeHandler {
	if practiceService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("practiceService cannot be nil for PracticeHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PracticeHandler")
	}

	return &PracticeHandler{
		practiceService: practiceService,
		logger:          logger.With(slog.String("component", "practice_handler")),
	}
}

// EnrichWord handles POST /cards/enrich requests.
func (h *PracticeHandler) EnrichWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req EnrichRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	enrichment, err := h.practiceService.EnrichWord(r.Context(), req.Character)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to enrich word")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, enrichment)
}

// GenerateDialogue handles POST /practice/dialogue requests.
func (h *PracticeHandler) GenerateDialogue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req DialogueRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	lines, err := h.practiceService.GenerateDialogue(r.Context(), service.DialogueParams{
		CardIDs:  req.CardIDs,
		Words:    req.Words,
		Scenario: req.Scenario,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate dialogue")
		return
	}

	log.Debug("dialogue generated", slog.Int("line_count", len(lines)))
	shared.RespondWithJSON(w, r, http.StatusOK, DialogueResponse{Lines: lines})
}

// RespondReflex handles POST /practice/reflex requests.
func (h *PracticeHandler) RespondReflex(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ReflexRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	reply, err := h.practiceService.RespondReflex(r.Context(), req.toParams())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to respond to message")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reply)
}
