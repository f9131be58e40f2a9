// item360-backend/internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/erpmco/item360-backend/internal/api/handlers"
	"github.com/erpmco/item360-backend/internal/api/middleware"
	"github.com/erpmco/item360-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	OverviewService   *service.ItemOverviewService
	ExceptionService  *service.ExceptionScanService
	AllocationService *service.AllocationService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
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
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.OverviewService != nil || services.AllocationService != nil {
			itemHandler := handlers.NewItemHandler(services.OverviewService, services.AllocationService)
			itemGroup := apiGroup.Group("/items")
			{
				itemGroup.GET("/:item_code/overview", itemHandler.GetOverview)
				itemGroup.GET("/:item_code/totals", itemHandler.GetTotals)
			}
		}

		if services.ExceptionService != nil {
			poHandler := handlers.NewPOHandler(services.ExceptionService)
			poGroup := apiGroup.Group("/purchase_orders")
			{
				poGroup.GET("/:po_name/exceptions", poHandler.ScanExceptions)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
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
