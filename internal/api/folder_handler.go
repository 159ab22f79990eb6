package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/hanzi-api/internal/api/shared"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/phrazzld/hanzi-api/internal/service"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// FolderHandler handles folder-related HTTP requests.
type FolderHandler struct {
	folderService service.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(folderService service.FolderService, logger *slog.Logger) *FolderHandler {
	if folderService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("folderService cannot be nil for FolderHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FolderHandler")
	}

	return &FolderHandler{
		folderService: folderService,
		logger:        logger.With(slog.String("component", "folder_handler")),
	}
}

// ListFolders handles GET /folders requests.
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListFolders(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list folders")
		return
	}

	resp := FolderListResponse{Folders: make([]FolderResponse, 0, len(folders))}
	for _, f := range folders {
		resp.Folders = append(resp.Folders, folderToResponse(f))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateFolder handles POST /folders requests.
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateFolderRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create folder")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated,
		folderToResponse(store.FolderWithCount{Folder: *folder}))
}

// DeleteFolder handles DELETE /folders/{id} requests. Cards in the folder
// become uncategorized.
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	folderID, ok := handlePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), folderID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete folder")
		return
	}

	log.Debug("folder deleted", slog.String("folder_id", folderID.String()))
	shared.RespondNoContent(w)
}
