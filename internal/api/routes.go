package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Danton11/RIND/internal/api/handlers"

	_ "github.com/Danton11/RIND/internal/api/docs" // swagger docs
)

// RegisterRoutes attaches every API route to the engine. Record routes
// live at the root so clients of the original /update endpoint keep
// working unchanged.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	// Swagger UI at /swagger/*
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)

	r.POST("/records", h.CreateRecord)
	r.GET("/records", h.ListRecords)
	r.GET("/records/:id", h.GetRecord)
	r.PUT("/records/:id", h.UpdateRecord)
	r.DELETE("/records/:id", h.DeleteRecord)

	r.POST("/update", h.LegacyUpdate)
}
