package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/donnegro/comercial/backend-go/internal/service"
)

// respondError maps service errors to a status code and a JSON error body.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var fetchErr *service.CatalogFetchError
	switch {
	case errors.Is(err, service.ErrNothingToCommit), errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrArchiveDisabled), errors.Is(err, service.ErrInvalidArchiveKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load the catalog, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
