package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/service"
)

// MaxUploadBytes caps the size of an uploaded cost list.
const MaxUploadBytes = 10 << 20

// CostListSource fetches a cost list by ID from a remote store.
type CostListSource interface {
	Fetch(ctx context.Context, fileID string) (string, []byte, error)
}

type ImportHandler struct {
	importService *service.ImportService
	source        CostListSource
}

// NewImportHandler builds the handler. source may be nil when no remote
// store is configured.
func NewImportHandler(importService *service.ImportService, source CostListSource) *ImportHandler {
	return &ImportHandler{importService: importService, source: source}
}

// Preview accepts a multipart "file" (CSV or XLSX), a "drive_file_id" or an
// "archive_key" form value, plus an optional "mode".
func (h *ImportHandler) Preview(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(1<<20))

	mode, ok := domain.ParseImportMode(c.PostForm("mode"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown mode %q", c.PostForm("mode"))})
		return
	}

	if key := strings.TrimSpace(c.PostForm("archive_key")); key != "" {
		preview, err := h.importService.PreviewArchived(c.Request.Context(), key, mode)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
		return
	}

	req, status, err := h.uploadFromRequest(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	req.Mode = mode

	preview, err := h.importService.PreviewUpload(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *ImportHandler) uploadFromRequest(c *gin.Context) (service.UploadRequest, int, error) {
	if fileID := strings.TrimSpace(c.PostForm("drive_file_id")); fileID != "" {
		if h.source == nil {
			return service.UploadRequest{}, http.StatusBadRequest, fmt.Errorf("drive is not configured")
		}
		name, data, err := h.source.Fetch(c.Request.Context(), fileID)
		if err != nil {
			_ = c.Error(err)
			return service.UploadRequest{}, http.StatusBadGateway, fmt.Errorf("could not download the drive file")
		}
		return service.UploadRequest{Name: name, Data: data}, 0, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return service.UploadRequest{}, http.StatusBadRequest, fmt.Errorf("file, drive_file_id or archive_key is required")
	}
	if header.Size > MaxUploadBytes {
		return service.UploadRequest{}, http.StatusRequestEntityTooLarge, fmt.Errorf("file is too large")
	}

	f, err := header.Open()
	if err != nil {
		return service.UploadRequest{}, http.StatusBadRequest, fmt.Errorf("could not read file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.UploadRequest{}, http.StatusBadRequest, fmt.Errorf("could not read file")
	}

	return service.UploadRequest{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, 0, nil
}

// Commit persists the reviewed candidates sent back by the admin panel.
func (h *ImportHandler) Commit(c *gin.Context) {
	var req service.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.importService.Commit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
		return
	}

	runs, err := h.importService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

// ListArchives lists the raw cost lists kept in object storage.
func (h *ImportHandler) ListArchives(c *gin.Context) {
	archives, err := h.importService.ListArchives(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, archives)
}
