// Package handlers implements the REST endpoint handlers for the RIND
// management API.
//
// Records (authoritative data):
//   - POST   /records     - Create a record
//   - GET    /records     - List records (paginated)
//   - GET    /records/:id - Fetch a record by id
//   - PUT    /records/:id - Partially update a record
//   - DELETE /records/:id - Delete a record
//   - POST   /update      - Legacy fire-and-forget upsert
//
// System:
//   - GET /health - Health check with a datastore probe
//   - GET /stats  - Runtime, host and DNS serving statistics
//
// Every non-204 response body is a models.Response envelope.
//
// @title RIND Management API
// @version 1.0
// @description REST API for managing the DNS records served by RIND.
//
// @contact.name RIND
// @contact.url https://github.com/Danton11/RIND
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /
package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Danton11/RIND/internal/api/models"
	"github.com/Danton11/RIND/internal/metrics"
	"github.com/Danton11/RIND/internal/records"
	"github.com/Danton11/RIND/internal/server"
)

// DNSStatsFunc supplies a point-in-time snapshot of the DNS serving
// counters for the stats endpoint.
type DNSStatsFunc func() server.DNSStatsSnapshot

// Handler carries the dependencies shared by all endpoint handlers.
type Handler struct {
	store     *records.Store
	provider  records.DatastoreProvider
	logger    *slog.Logger
	sink      metrics.Sink
	dnsStats  DNSStatsFunc
	startTime time.Time
}

// New builds a Handler. sink may be nil (telemetry disabled) and dnsStats
// may be nil (the stats endpoint then reports zeroes).
func New(store *records.Store, provider records.DatastoreProvider, logger *slog.Logger, sink metrics.Sink, dnsStats DNSStatsFunc) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Handler{
		store:     store,
		provider:  provider,
		logger:    logger,
		sink:      sink,
		dnsStats:  dnsStats,
		startTime: time.Now(),
	}
}

// fail writes the error envelope with the status classified from err and
// reports the failure to the metrics sink.
func (h *Handler) fail(c *gin.Context, err error) {
	h.sink.RecordAPIError(endpointLabel(c), records.ErrorType(err))
	c.JSON(records.HTTPStatus(err), models.Fail(err.Error()))
}

// failStatus writes the error envelope with an explicit status, for
// errors that did not come from the records package (malformed JSON and
// the like).
func (h *Handler) failStatus(c *gin.Context, status int, errorType, msg string) {
	h.sink.RecordAPIError(endpointLabel(c), errorType)
	c.JSON(status, models.Fail(msg))
}

func endpointLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
