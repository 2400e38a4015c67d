package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/internal/domain/models"
	"cirrus/internal/domain/services"
	"cirrus/internal/httputil"
	memoryRepo "cirrus/internal/repository/memory"
	serviceAuth "cirrus/internal/service/auth"
	serviceDrive "cirrus/internal/service/drive"
	memoryStore "cirrus/internal/storage/memory"
)

const testUserID = "user-1"

// identityStub injects a fixed identity the way the auth middleware would.
func identityStub(userID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, httputil.WithIdentity(r, userID, userID+"@example.com"))
	})
}

func newDriveServer(t *testing.T) (http.Handler, services.DriveService, string) {
	t.Helper()
	nodes := memoryRepo.NewNodeRepository()
	blobs := memoryStore.NewBlobStore()
	logger := slog.New(slog.DiscardHandler)
	drive := serviceDrive.NewService(nodes, blobs, serviceAuth.NewOwnerAuthorizer(nodes), logger)

	rootID, err := drive.CreateRootFolder(context.Background(), testUserID)
	require.NoError(t, err)

	h := NewDriveHandler(drive, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/drive/{id}/children", h.ListChildren)
	mux.HandleFunc("POST /api/drive/folders", h.CreateFolder)
	mux.HandleFunc("POST /api/drive/{id}/files", h.UploadFile)
	mux.HandleFunc("GET /api/drive/files/{id}", h.DownloadFile)
	mux.HandleFunc("POST /api/drive/move", h.MoveNodes)
	mux.HandleFunc("POST /api/drive/trash", h.MoveToTrash)
	mux.HandleFunc("GET /api/drive/trash", h.ListTrash)
	mux.HandleFunc("DELETE /api/drive/trash", h.DeleteFromTrash)
	mux.HandleFunc("POST /api/drive/archive", h.DownloadArchive)

	return identityStub(testUserID, mux), drive, rootID
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestDriveHandler_CreateFolderAndList(t *testing.T) {
	srv, _, rootID := newDriveServer(t)

	rec := doJSON(t, srv, "POST", "/api/drive/folders", models.CreateFolderRequest{
		ParentID: rootID,
		Name:     "Documents",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var folder models.Node
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folder))
	assert.Equal(t, "Documents", folder.Name)

	rec = doJSON(t, srv, "GET", fmt.Sprintf("/api/drive/%s/children", rootID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var children []models.Node
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &children))
	assert.Len(t, children, 1)
}

func TestDriveHandler_UploadAndDownload(t *testing.T) {
	srv, _, rootID := newDriveServer(t)

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/drive/%s/files?name=x.txt", rootID), strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.EqualValues(t, 5, result.Size)

	rec = doJSON(t, srv, "GET", "/api/drive/files/"+result.NodeID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "x.txt")
}

func TestDriveHandler_UploadWithoutNameRejected(t *testing.T) {
	srv, _, rootID := newDriveServer(t)

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/drive/%s/files", rootID), strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDriveHandler_TrashLifecycle(t *testing.T) {
	srv, drive, rootID := newDriveServer(t)

	res, err := drive.Upload(context.Background(), testUserID, rootID, "a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	rec := doJSON(t, srv, "POST", "/api/drive/trash", models.NodeIDsRequest{NodeIDs: []string{res.NodeID}})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, "GET", "/api/drive/trash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var trashed []models.Node
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trashed))
	require.Len(t, trashed, 1)

	rec = doJSON(t, srv, "DELETE", "/api/drive/trash", models.NodeIDsRequest{NodeIDs: []string{res.NodeID}})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, "GET", "/api/drive/trash", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDriveHandler_ArchiveStream(t *testing.T) {
	srv, drive, rootID := newDriveServer(t)

	res, err := drive.Upload(context.Background(), testUserID, rootID, "x.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	rec := doJSON(t, srv, "POST", "/api/drive/archive", models.NodeIDsRequest{NodeIDs: []string{res.NodeID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "x.txt", zr.File[0].Name)
}

func TestDriveHandler_ArchiveValidationError(t *testing.T) {
	srv, _, _ := newDriveServer(t)

	rec := doJSON(t, srv, "POST", "/api/drive/archive", models.NodeIDsRequest{NodeIDs: []string{"no-such"}})
	assert.Equal(t, http.StatusNotFound, rec.Code, "errors before the first byte still map to problem responses")
}

func TestDriveHandler_MoveCycleConflict(t *testing.T) {
	srv, drive, rootID := newDriveServer(t)

	a, err := drive.CreateFolder(context.Background(), testUserID, &models.CreateFolderRequest{ParentID: rootID, Name: "A"})
	require.NoError(t, err)
	b, err := drive.CreateFolder(context.Background(), testUserID, &models.CreateFolderRequest{ParentID: a.ID, Name: "B"})
	require.NoError(t, err)

	rec := doJSON(t, srv, "POST", "/api/drive/move", models.MoveNodesRequest{
		NodeIDs:     []string{a.ID},
		NewParentID: b.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
