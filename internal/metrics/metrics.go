// Package metrics collects the server's operational telemetry and exposes
// it in the Prometheus text format.
//
// All instruments live in a private registry created by New; nothing is
// registered globally. The DNS pipeline, the record store and the control
// plane report through the Sink interface so that tests and tools can run
// with telemetry disabled via NopSink.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the contract the rest of the server reports through.
// Implementations must be safe for concurrent use. Observations never
// return errors; a sink that cannot record a sample drops it.
type Sink interface {
	// ObserveQuery counts one DNS query of the given type and records its
	// processing duration.
	ObserveQuery(queryType string, seconds float64)
	// CountResponse counts one DNS response by symbolic code (NOERROR,
	// NXDOMAIN, ...).
	CountResponse(code string)
	IncNXDomain()
	IncServFail()
	IncPacketErrors()
	IncActiveConnections()
	DecActiveConnections()

	// RecordOperationSuccess reports a committed record mutation
	// (operation is create, update, delete or upsert).
	RecordOperationSuccess(operation string, seconds float64)
	// RecordOperationFailure reports a rejected record mutation together
	// with its error class (validation_error, not_found, ...).
	RecordOperationFailure(operation, errorType string, seconds float64)
	// SetActiveRecords publishes the store size after a mutation.
	SetActiveRecords(count int)

	RecordAPIRequest(endpoint, method, status string, seconds float64)
	RecordAPIError(endpoint, errorType string)
}

// Metrics is the Prometheus-backed Sink. The instance label on the query
// and response series is fixed at construction from the configured server
// identity.
type Metrics struct {
	registry *prometheus.Registry
	instance string
	started  time.Time

	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queriesPerSec prometheus.Gauge
	queryCount    atomic.Uint64

	responsesTotal *prometheus.CounterVec
	nxdomainTotal  prometheus.Counter
	servfailTotal  prometheus.Counter

	activeConns  prometheus.Gauge
	packetErrors prometheus.Counter

	recordOps        *prometheus.CounterVec
	recordOpDuration *prometheus.HistogramVec
	recordsCreated   prometheus.Counter
	recordsUpdated   prometheus.Counter
	recordsDeleted   prometheus.Counter
	recordOpsFailed  *prometheus.CounterVec
	activeRecords    prometheus.Gauge

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	apiErrors   *prometheus.CounterVec
}

var _ Sink = (*Metrics)(nil)

// New creates the full instrument set and registers it in a fresh
// registry. instance tags the per-server series so that multiple
// processes can share one scrape target.
func New(instance string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		instance: instance,
		started:  time.Now(),
	}

	m.queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dns_queries_total",
		Help: "Total number of DNS queries by type",
	}, []string{"query_type", "instance"})
	m.queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "dns_query_duration_seconds",
		Help: "DNS query processing duration in seconds",
	}, []string{"query_type", "instance"})
	m.queriesPerSec = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dns_queries_per_second",
		Help: "Current DNS queries per second rate",
	})

	m.responsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dns_responses_total",
		Help: "Total number of DNS responses by code",
	}, []string{"response_code", "instance"})
	m.nxdomainTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dns_nxdomain_total",
		Help: "Total number of NXDOMAIN responses",
	})
	m.servfailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dns_servfail_total",
		Help: "Total number of SERVFAIL responses",
	})

	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dns_server_uptime_seconds",
		Help: "DNS server uptime in seconds",
	}, func() float64 { return time.Since(m.started).Seconds() })
	m.activeConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dns_active_connections",
		Help: "Number of active DNS connections",
	})
	m.packetErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dns_packet_errors_total",
		Help: "Total number of DNS packet parsing errors",
	})

	m.recordOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "record_operations_total",
		Help: "Total number of record operations by type and status",
	}, []string{"operation", "status"})
	m.recordOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "record_operation_duration_seconds",
		Help: "Record operation processing duration in seconds",
	}, []string{"operation"})
	m.recordsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_created_total",
		Help: "Total number of records created",
	})
	m.recordsUpdated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_updated_total",
		Help: "Total number of records updated",
	})
	m.recordsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_deleted_total",
		Help: "Total number of records deleted",
	})
	m.recordOpsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "record_operations_failed_total",
		Help: "Total number of failed record operations by type and error",
	}, []string{"operation", "error_type"})
	m.activeRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_records_total",
		Help: "Current number of active DNS records",
	})

	m.apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of API requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})
	m.apiDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "api_request_duration_seconds",
		Help: "API request processing duration in seconds",
	}, []string{"endpoint", "method"})
	m.apiErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API errors by endpoint and error type",
	}, []string{"endpoint", "error_type"})

	m.registry.MustRegister(
		m.queriesTotal, m.queryDuration, m.queriesPerSec,
		m.responsesTotal, m.nxdomainTotal, m.servfailTotal,
		uptime, m.activeConns, m.packetErrors,
		m.recordOps, m.recordOpDuration,
		m.recordsCreated, m.recordsUpdated, m.recordsDeleted,
		m.recordOpsFailed, m.activeRecords,
		m.apiRequests, m.apiDuration, m.apiErrors,
	)
	return m
}

// Registry exposes the underlying registry for the exposition server and
// for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveQuery(queryType string, seconds float64) {
	m.queriesTotal.WithLabelValues(queryType, m.instance).Inc()
	m.queryDuration.WithLabelValues(queryType, m.instance).Observe(seconds)
	m.queryCount.Add(1)
}

func (m *Metrics) CountResponse(code string) {
	m.responsesTotal.WithLabelValues(code, m.instance).Inc()
}

func (m *Metrics) IncNXDomain() { m.nxdomainTotal.Inc() }

func (m *Metrics) IncServFail() { m.servfailTotal.Inc() }

func (m *Metrics) IncPacketErrors() { m.packetErrors.Inc() }

func (m *Metrics) IncActiveConnections() { m.activeConns.Inc() }

func (m *Metrics) DecActiveConnections() { m.activeConns.Dec() }

func (m *Metrics) RecordOperationSuccess(operation string, seconds float64) {
	m.recordOps.WithLabelValues(operation, "success").Inc()
	m.recordOpDuration.WithLabelValues(operation).Observe(seconds)

	switch operation {
	case "create":
		m.recordsCreated.Inc()
	case "update":
		m.recordsUpdated.Inc()
	case "delete":
		m.recordsDeleted.Inc()
	}
}

func (m *Metrics) RecordOperationFailure(operation, errorType string, seconds float64) {
	m.recordOps.WithLabelValues(operation, "failure").Inc()
	m.recordOpsFailed.WithLabelValues(operation, errorType).Inc()
	m.recordOpDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) SetActiveRecords(count int) {
	m.activeRecords.Set(float64(count))
}

func (m *Metrics) RecordAPIRequest(endpoint, method, status string, seconds float64) {
	m.apiRequests.WithLabelValues(endpoint, method, status).Inc()
	m.apiDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

func (m *Metrics) RecordAPIError(endpoint, errorType string) {
	m.apiErrors.WithLabelValues(endpoint, errorType).Inc()
}

// refreshQPS publishes the number of queries observed since the previous
// refresh and returns the new cumulative count.
func (m *Metrics) refreshQPS(last uint64) uint64 {
	cur := m.queryCount.Load()
	m.queriesPerSec.Set(float64(cur - last))
	return cur
}

// Uptime reports how long this Metrics instance has been alive. The /stats
// endpoint reuses it so the control plane and the gauge agree.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.started)
}

// NopSink discards every observation. It stands in wherever telemetry is
// not wired, keeping call sites free of nil checks.
type NopSink struct{}

var _ Sink = NopSink{}

func (NopSink) ObserveQuery(string, float64) {}

func (NopSink) CountResponse(string) {}

func (NopSink) IncNXDomain() {}

func (NopSink) IncServFail() {}

func (NopSink) IncPacketErrors() {}

func (NopSink) IncActiveConnections() {}

func (NopSink) DecActiveConnections() {}

func (NopSink) RecordOperationSuccess(string, float64) {}

func (NopSink) RecordOperationFailure(string, string, float64) {}

func (NopSink) SetActiveRecords(int) {}

func (NopSink) RecordAPIRequest(string, string, string, float64) {}

func (NopSink) RecordAPIError(string, string) {}
