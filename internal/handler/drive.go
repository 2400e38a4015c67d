package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"cirrus/internal/domain/models"
	"cirrus/internal/domain/services"
	"cirrus/internal/httputil"
)

// DriveHandler handles drive HTTP requests.
// Handlers only communicate with services, never repositories.
type DriveHandler struct {
	driveService services.DriveService
	logger       *slog.Logger
}

// NewDriveHandler creates a new drive handler
func NewDriveHandler(driveService services.DriveService, logger *slog.Logger) *DriveHandler {
	return &DriveHandler{
		driveService: driveService,
		logger:       logger,
	}
}

// ListChildren lists the nodes directly under a folder
// GET /api/drive/{id}/children
func (h *DriveHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	parentID, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	children, err := h.driveService.ListChildren(r.Context(), userID, parentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, children)
}

// CreateFolder creates a new folder under an existing parent
// POST /api/drive/folders
func (h *DriveHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req models.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.driveService.CreateFolder(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// UploadFile streams the raw request body into a new file node
// POST /api/drive/{id}/files?name=report.pdf
func (h *DriveHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	parentID, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		httputil.RespondError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	userID := httputil.GetUserID(r)
	result, err := h.driveService.Upload(r.Context(), userID, parentID, name, r.Body)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// DownloadFile streams a file's content back to the caller
// GET /api/drive/files/{id}
func (h *DriveHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	node, rc, err := h.driveService.OpenFile(r.Context(), userID, nodeID)
	if err != nil {
		handleError(w, err)
		return
	}
	defer rc.Close()

	contentType := node.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": node.Name}))
	if node.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(node.Size, 10))
	}

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; all we can do is log and drop the connection.
		h.logger.Error("download stream aborted", "node_id", nodeID, "error", err)
	}
}

// MoveNodes reparents nodes under a new parent folder
// POST /api/drive/move
func (h *DriveHandler) MoveNodes(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req models.MoveNodesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.driveService.MoveNodes(r.Context(), userID, &req); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MoveToTrash soft-deletes the requested subtrees
// POST /api/drive/trash
func (h *DriveHandler) MoveToTrash(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req models.NodeIDsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.driveService.MoveToTrash(r.Context(), userID, req.NodeIDs); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTrash lists the caller's trashed nodes
// GET /api/drive/trash
func (h *DriveHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	nodes, err := h.driveService.ListTrash(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, nodes)
}

// DeleteFromTrash permanently removes trashed subtrees
// DELETE /api/drive/trash
func (h *DriveHandler) DeleteFromTrash(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req models.NodeIDsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.driveService.PurgeFromTrash(r.Context(), userID, req.NodeIDs); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadArchive streams a zip of the requested nodes and their subtrees
// POST /api/drive/archive
func (h *DriveHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req models.NodeIDsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The archive is streamed as it is built, so ownership and shape errors
	// surface before the first byte but blob failures mid-stream cannot be
	// turned into an error response anymore.
	filename := fmt.Sprintf("drive-%s.zip", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	cw := &headerDeferringWriter{w: w}
	if err := h.driveService.BuildArchive(r.Context(), userID, req.NodeIDs, cw); err != nil {
		if !cw.wrote {
			handleError(w, err)
			return
		}
		h.logger.Error("archive stream aborted", "error", err)
	}
}

// headerDeferringWriter postpones the 200 status until the first archive
// byte, so validation failures can still produce a proper error response.
type headerDeferringWriter struct {
	w     http.ResponseWriter
	wrote bool
}

func (c *headerDeferringWriter) Write(p []byte) (int, error) {
	c.wrote = true
	return c.w.Write(p)
}
