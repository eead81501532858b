package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Danton11/RIND/internal/api/models"
	"github.com/Danton11/RIND/internal/records"
)

// LegacyUpdate godoc
// @Summary Legacy record upsert
// @Description Schedules an upsert of the given record and returns immediately. The outcome is not reported to the caller; failures only show up in the server log.
// @Tags records
// @Accept json
// @Produce json
// @Param record body records.LegacyRequest true "Record to upsert"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response
// @Router /update [post]
func (h *Handler) LegacyUpdate(c *gin.Context) {
	var req records.LegacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failStatus(c, http.StatusBadRequest, "validation_error", "Invalid request: "+err.Error())
		return
	}

	// Detached from the request context: the mutation must outlive this
	// handler.
	go func() {
		rec, err := req.Record()
		if err == nil {
			_, err = h.store.UpsertLegacy(context.Background(), rec)
		}
		if err != nil {
			h.logger.Warn("legacy update failed", "name", req.Name, "error", err)
		}
	}()

	c.JSON(http.StatusOK, models.OK(gin.H{"message": "update scheduled", "name": req.Name}))
}
