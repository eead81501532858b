package server

import (
	"sync/atomic"
	"time"

	"github.com/Danton11/RIND/internal/dns"
)

// DNSStats collects serving statistics for the control plane's /stats
// endpoint. All methods are safe for concurrent use.
type DNSStats struct {
	queriesTotal   atomic.Uint64
	responsesOK    atomic.Uint64
	responsesNX    atomic.Uint64
	responsesErr   atomic.Uint64
	parseErrors    atomic.Uint64
	latencyTotalNs atomic.Uint64
	started        time.Time
}

// NewDNSStats creates a statistics collector. Uptime counts from here.
func NewDNSStats() *DNSStats {
	return &DNSStats{started: time.Now()}
}

// RecordQuery records one answered query and its processing latency.
func (s *DNSStats) RecordQuery(rcode dns.RCode, latency time.Duration) {
	s.queriesTotal.Add(1)
	if latency > 0 {
		s.latencyTotalNs.Add(uint64(latency.Nanoseconds()))
	}
	switch rcode {
	case dns.RCodeNoError:
		s.responsesOK.Add(1)
	case dns.RCodeNXDomain:
		s.responsesNX.Add(1)
	default:
		s.responsesErr.Add(1)
	}
}

// RecordParseError records a datagram that never became a query.
func (s *DNSStats) RecordParseError() {
	s.parseErrors.Add(1)
}

// DNSStatsSnapshot is a point-in-time view of the serving statistics.
type DNSStatsSnapshot struct {
	QueriesTotal  uint64  `json:"queries_total"`
	ResponsesOK   uint64  `json:"responses_ok"`
	ResponsesNX   uint64  `json:"responses_nxdomain"`
	ResponsesErr  uint64  `json:"responses_error"`
	ParseErrors   uint64  `json:"parse_errors"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Snapshot returns the current statistics.
func (s *DNSStats) Snapshot() DNSStatsSnapshot {
	total := s.queriesTotal.Load()
	latencyNs := s.latencyTotalNs.Load()

	avgLatencyMs := 0.0
	if total > 0 {
		avgLatencyMs = float64(latencyNs) / float64(total) / 1e6
	}

	return DNSStatsSnapshot{
		QueriesTotal:  total,
		ResponsesOK:   s.responsesOK.Load(),
		ResponsesNX:   s.responsesNX.Load(),
		ResponsesErr:  s.responsesErr.Load(),
		ParseErrors:   s.parseErrors.Load(),
		AvgLatencyMs:  avgLatencyMs,
		UptimeSeconds: time.Since(s.started).Seconds(),
	}
}
