// Package config provides runtime configuration for RIND.
//
// Everything is driven by environment variables so that the server can be
// reconfigured per container without a rebuild: DNS_BIND_ADDR,
// API_BIND_ADDR, METRICS_PORT, SERVER_ID, DNS_FILE_PATH,
// DATASTORE_BACKEND, LOG_LEVEL and LOG_FORMAT. Load reads the
// environment; Validate normalises and rejects nonsense. cmd/rind layers
// a small flag set on top for local runs.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Danton11/RIND/internal/logging"
)

// Defaults used when the environment leaves a knob unset.
const (
	DefaultDNSBindAddr = "127.0.0.1:12312"
	DefaultAPIBindAddr = "127.0.0.1:8080"
	DefaultMetricsPort = 9092
	DefaultFilePath    = "dns_records.txt"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Load builds a Config from the process environment, applying defaults
// for anything unset. The result is not yet validated.
func Load() *Config {
	// LOG_LEVEL and LOG_FORMAT go through the logging package so that
	// both consumers agree on the defaults.
	logCfg := logging.FromEnv()
	return &Config{
		DNS: DNSConfig{
			BindAddr: envOr("DNS_BIND_ADDR", DefaultDNSBindAddr),
		},
		API: APIConfig{
			BindAddr: envOr("API_BIND_ADDR", DefaultAPIBindAddr),
		},
		Metrics: MetricsConfig{
			Port: envIntOr("METRICS_PORT", DefaultMetricsPort),
		},
		Datastore: DatastoreConfig{
			Backend: envOr("DATASTORE_BACKEND", BackendFile),
			Path:    envOr("DNS_FILE_PATH", DefaultFilePath),
		},
		ServerID: envOr("SERVER_ID", ""),
		Logging: LoggingConfig{
			Level:  logCfg.Level,
			Format: logCfg.Format,
		},
	}
}

// Validate validates and normalizes the configuration.
func (cfg *Config) Validate() error {
	if err := validateBindAddr(cfg.DNS.BindAddr); err != nil {
		return fmt.Errorf("dns.bind_addr: %w", err)
	}
	if err := validateBindAddr(cfg.API.BindAddr); err != nil {
		return fmt.Errorf("api.bind_addr: %w", err)
	}
	if cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535 {
		return errors.New("metrics.port must be 1..65535")
	}

	// Normalize the datastore backend
	cfg.Datastore.Backend = strings.ToLower(strings.TrimSpace(cfg.Datastore.Backend))
	switch cfg.Datastore.Backend {
	case "":
		cfg.Datastore.Backend = BackendFile
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("datastore.backend must be %q or %q", BackendFile, BackendSQLite)
	}
	if strings.TrimSpace(cfg.Datastore.Path) == "" {
		cfg.Datastore.Path = DefaultFilePath
	}

	// The instance tag ends up as a metrics label, so it must never be
	// empty. Fall back to the hostname, then to a generated id.
	if strings.TrimSpace(cfg.ServerID) == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			cfg.ServerID = host
		} else {
			cfg.ServerID = "rind-" + uuid.New().String()[:8]
		}
	}

	// Normalize logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	return nil
}

// MetricsAddr returns the listen address of the metrics endpoint.
func (cfg *Config) MetricsAddr() string {
	return fmt.Sprintf(":%d", cfg.Metrics.Port)
}

func validateBindAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if host == "" {
		return errors.New("host must not be empty")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port %q is not numeric", port)
	}
	if n <= 0 || n > 65535 {
		return errors.New("port must be 1..65535")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}
