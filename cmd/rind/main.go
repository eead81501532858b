// Command rind runs the authoritative DNS server together with its HTTP
// management plane and metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Danton11/RIND/internal/api"
	"github.com/Danton11/RIND/internal/config"
	"github.com/Danton11/RIND/internal/logging"
	"github.com/Danton11/RIND/internal/metrics"
	"github.com/Danton11/RIND/internal/records"
	"github.com/Danton11/RIND/internal/resolver"
	"github.com/Danton11/RIND/internal/server"
)

func main() {
	var (
		dnsAddr  = flag.String("dns-addr", "", "Override the DNS bind address (or set DNS_BIND_ADDR)")
		apiAddr  = flag.String("api-addr", "", "Override the API bind address (or set API_BIND_ADDR)")
		dataPath = flag.String("records", "", "Override the datastore path (or set DNS_FILE_PATH)")
		backend  = flag.String("backend", "", "Datastore backend, file or sqlite (or set DATASTORE_BACKEND)")
		jsonLogs = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug    = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := config.Load()
	if *dnsAddr != "" {
		cfg.DNS.BindAddr = *dnsAddr
	}
	if *apiAddr != "" {
		cfg.API.BindAddr = *apiAddr
	}
	if *dataPath != "" {
		cfg.Datastore.Path = *dataPath
	}
	if *backend != "" {
		cfg.Datastore.Backend = *backend
	}
	if *jsonLogs {
		cfg.Logging.Format = logging.FormatJSON
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		IncludePID:  cfg.Logging.IncludePID,
		ExtraFields: cfg.Logging.ExtraFields,
	})
	logger.Info("RIND starting",
		"dns_addr", cfg.DNS.BindAddr,
		"api_addr", cfg.API.BindAddr,
		"metrics_addr", cfg.MetricsAddr(),
		"backend", cfg.Datastore.Backend,
		"datastore", cfg.Datastore.Path,
		"server_id", cfg.ServerID,
	)

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "server exited with error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	provider, err := openProvider(cfg)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer provider.Close()

	if err := provider.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize datastore: %w", err)
	}

	m := metrics.New(cfg.ServerID)
	store := records.NewStore(provider, m)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	logger.Info("records loaded", "count", store.Count())

	stats := server.NewDNSStats()
	udp := &server.UDPServer{
		Resolver: resolver.New(store),
		Stats:    stats,
		Sink:     m,
	}

	apiServer := api.New(api.Config{
		Addr:     cfg.API.BindAddr,
		Store:    store,
		Provider: provider,
		Logger:   logger,
		Sink:     m,
		DNSStats: stats.Snapshot,
	})
	metricsServer := metrics.NewServer(cfg.MetricsAddr(), m)

	runner := &server.Runner{
		Logger:  logger,
		UDP:     udp,
		UDPAddr: cfg.DNS.BindAddr,
		HTTP:    []server.HTTPComponent{apiServer, metricsServer},
	}
	return runner.Run()
}

func openProvider(cfg *config.Config) (records.DatastoreProvider, error) {
	switch cfg.Datastore.Backend {
	case config.BackendSQLite:
		return records.NewSQLiteProvider(cfg.Datastore.Path)
	default:
		return records.NewFileProvider(cfg.Datastore.Path), nil
	}
}
