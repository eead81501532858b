package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Danton11/RIND/internal/api/models"
	"github.com/Danton11/RIND/internal/records"
)

const (
	defaultPage    = 1
	defaultPerPage = 50
)

// CreateRecord godoc
// @Summary Create a DNS record
// @Description Creates a record from the given fields. ttl, record_type and class default to 300, A and IN.
// @Tags records
// @Accept json
// @Produce json
// @Param record body records.CreateRequest true "Record to create"
// @Success 201 {object} models.Response{data=records.Record}
// @Failure 400 {object} models.Response
// @Failure 409 {object} models.Response "Name and type already taken"
// @Failure 500 {object} models.Response
// @Router /records [post]
func (h *Handler) CreateRecord(c *gin.Context) {
	var req records.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.failStatus(c, http.StatusBadRequest, "validation_error", "Invalid request: "+err.Error())
		return
	}

	rec, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("record created", "id", rec.ID, "name", rec.Name, "type", rec.RecordType)
	c.JSON(http.StatusCreated, models.OK(rec))
}

// ListRecords godoc
// @Summary List DNS records
// @Description Returns one page of records, oldest first. Malformed paging params fall back to page=1, per_page=50; out-of-range values are rejected.
// @Tags records
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Records per page" default(50) maximum(1000)
// @Success 200 {object} models.Response{data=records.ListPage}
// @Failure 400 {object} models.Response
// @Router /records [get]
func (h *Handler) ListRecords(c *gin.Context) {
	page := intQuery(c, "page", defaultPage)
	perPage := intQuery(c, "per_page", defaultPerPage)

	listing, err := h.store.List(page, perPage)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(listing))
}

// GetRecord godoc
// @Summary Fetch a DNS record
// @Tags records
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} models.Response{data=records.Record}
// @Failure 404 {object} models.Response
// @Router /records/{id} [get]
func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.store.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(rec))
}

// UpdateRecord godoc
// @Summary Partially update a DNS record
// @Description Present fields replace the stored values, absent fields keep them, value "" clears the stored value.
// @Tags records
// @Accept json
// @Produce json
// @Param id path string true "Record id"
// @Param patch body records.UpdateRequest true "Fields to change"
// @Success 200 {object} models.Response{data=records.Record}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 409 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /records/{id} [put]
func (h *Handler) UpdateRecord(c *gin.Context) {
	var patch records.UpdateRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.failStatus(c, http.StatusBadRequest, "validation_error", "Invalid request: "+err.Error())
		return
	}

	rec, err := h.store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("record updated", "id", rec.ID, "name", rec.Name)
	c.JSON(http.StatusOK, models.OK(rec))
}

// DeleteRecord godoc
// @Summary Delete a DNS record
// @Tags records
// @Param id path string true "Record id"
// @Success 204 "No content"
// @Failure 404 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /records/{id} [delete]
func (h *Handler) DeleteRecord(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("record deleted", "id", id)
	c.Status(http.StatusNoContent)
}

// intQuery reads an integer query parameter, falling back to def when the
// parameter is absent or unparseable. Range checks stay with the store so
// out-of-range values get a 400 instead of a silent clamp.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
