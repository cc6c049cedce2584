package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/donnegro/comercial/backend-go/internal/api/handlers"
	"github.com/donnegro/comercial/backend-go/internal/api/middleware"
	"github.com/donnegro/comercial/backend-go/internal/service"
)

// Drive is the Google Drive surface used by the router.
type Drive interface {
	handlers.DriveBrowser
	handlers.CostListSource
}

type Services struct {
	CatalogService *service.CatalogService
	ImportService  *service.ImportService
	Drive          Drive
	DriveFolderID  string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = handlers.MaxUploadBytes

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.CatalogService != nil {
		pricingHandler := handlers.NewPricingHandler(services.CatalogService)
		productHandler := handlers.NewProductHandler(services.CatalogService)

		apiGroup.GET("/pricing/quote", pricingHandler.Quote)
		apiGroup.GET("/products", productHandler.ListProducts)
	}

	if services.ImportService != nil {
		var source handlers.CostListSource
		if services.Drive != nil {
			source = services.Drive
		}
		importHandler := handlers.NewImportHandler(services.ImportService, source)
		importGroup := apiGroup.Group("/imports")
		{
			importGroup.POST("/preview", importHandler.Preview)
			importGroup.POST("/commit", importHandler.Commit)
			importGroup.GET("/runs", importHandler.ListRuns)
			importGroup.GET("/archives", importHandler.ListArchives)
		}
	}

	if services.Drive != nil {
		driveHandler := handlers.NewDriveHandler(services.Drive, services.DriveFolderID)
		apiGroup.GET("/drive/files", driveHandler.ListFiles)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	return corsConfig
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
