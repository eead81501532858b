package models

import (
	"time"

	"github.com/Danton11/RIND/internal/server"
)

// HealthResponse reports liveness plus the result of a datastore probe.
type HealthResponse struct {
	Status        string `json:"status"`
	Datastore     string `json:"datastore"`
	RecordCount   int    `json:"record_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// RuntimeStatsResponse summarises the Go runtime.
type RuntimeStatsResponse struct {
	GoRoutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	NumCPU        int     `json:"num_cpu"`
}

// HostStatsResponse summarises the machine the server runs on.
type HostStatsResponse struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryUsedPct float64 `json:"memory_used_percent"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
}

// ServerStatsResponse is the full /stats payload.
type ServerStatsResponse struct {
	Uptime        string                  `json:"uptime"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	StartTime     time.Time               `json:"start_time"`
	RecordCount   int                     `json:"record_count"`
	Runtime       RuntimeStatsResponse    `json:"runtime"`
	Host          *HostStatsResponse      `json:"host,omitempty"`
	DNS           server.DNSStatsSnapshot `json:"dns"`
}
