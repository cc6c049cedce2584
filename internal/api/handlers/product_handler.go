package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/donnegro/comercial/backend-go/internal/service"
	"github.com/donnegro/comercial/backend-go/pkg/logger"
)

type ProductHandler struct {
	catalogService *service.CatalogService
}

func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// ListProducts returns every product with its cash price and installment plans.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}
