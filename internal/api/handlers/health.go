package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Danton11/RIND/internal/api/models"
)

// Health godoc
// @Summary Health check
// @Description Returns liveness plus the result of a datastore probe. The response is always 200; a failing datastore shows up as status "degraded".
// @Tags system
// @Produce json
// @Success 200 {object} models.Response{data=models.HealthResponse}
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	resp := models.HealthResponse{
		Status:        "ok",
		Datastore:     "ok",
		RecordCount:   h.store.Count(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	if h.provider != nil {
		if err := h.provider.HealthCheck(c.Request.Context()); err != nil {
			h.logger.Warn("datastore health check failed", "error", err)
			resp.Status = "degraded"
			resp.Datastore = err.Error()
		}
	}

	c.JSON(http.StatusOK, models.OK(resp))
}

// Stats godoc
// @Summary Server statistics
// @Description Returns uptime, Go runtime, host and DNS serving statistics.
// @Tags system
// @Produce json
// @Success 200 {object} models.Response{data=models.ServerStatsResponse}
// @Router /stats [get]
func (h *Handler) Stats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	resp := models.ServerStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		RecordCount:   h.store.Count(),
		Runtime: models.RuntimeStatsResponse{
			GoRoutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(m.Alloc) / 1024 / 1024,
			NumCPU:        runtime.NumCPU(),
		},
		Host: hostStats(),
	}
	if h.dnsStats != nil {
		resp.DNS = h.dnsStats()
	}

	c.JSON(http.StatusOK, models.OK(resp))
}

// hostStats samples host-level usage. Sampling can fail in restricted
// containers; the field is then omitted rather than failing the request.
func hostStats() *models.HostStatsResponse {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}
	hs := &models.HostStatsResponse{
		MemoryUsedPct: vm.UsedPercent,
		MemoryTotalMB: float64(vm.Total) / 1024 / 1024,
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		hs.CPUPercent = pct[0]
	}
	return hs
}
