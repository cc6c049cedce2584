package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/donnegro/comercial/backend-go/internal/drive"
)

// DriveBrowser lists the cost lists available in Drive.
type DriveBrowser interface {
	ListFiles(ctx context.Context, folderID string) ([]*drive.File, error)
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type DriveHandler struct {
	browser       DriveBrowser
	defaultFolder string
}

func NewDriveHandler(browser DriveBrowser, defaultFolder string) *DriveHandler {
	return &DriveHandler{browser: browser, defaultFolder: defaultFolder}
}

// ListFiles lists a folder given by "folder_id" or "path", falling back to
// the configured folder.
func (h *DriveHandler) ListFiles(c *gin.Context) {
	ctx := c.Request.Context()
	folderID := strings.TrimSpace(c.Query("folder_id"))

	if path := strings.TrimSpace(c.Query("path")); path != "" {
		id, err := h.browser.FindFolderByPath(ctx, path)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusNotFound, gin.H{"error": "folder not found"})
			return
		}
		folderID = id
	}
	if folderID == "" {
		folderID = h.defaultFolder
	}

	files, err := h.browser.ListFiles(ctx, folderID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list drive files"})
		return
	}
	if files == nil {
		files = []*drive.File{}
	}

	c.JSON(http.StatusOK, files)
}
