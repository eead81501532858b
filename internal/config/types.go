package config

// DNSConfig contains the UDP listener settings.
type DNSConfig struct {
	BindAddr string `json:"bind_addr"`
}

// APIConfig contains the HTTP control-plane settings.
type APIConfig struct {
	BindAddr string `json:"bind_addr"`
}

// MetricsConfig contains the Prometheus exposition settings.
type MetricsConfig struct {
	Port int `json:"port"`
}

// DatastoreConfig selects and locates the record datastore.
//
// Backend is "file" (the colon-separated text format) or "sqlite". Path is
// the datastore file for both backends.
type DatastoreConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level       string            `json:"level"`
	Format      string            `json:"format"`
	IncludePID  bool              `json:"include_pid"`
	ExtraFields map[string]string `json:"extra_fields,omitempty"`
}

// Config is the root configuration structure.
type Config struct {
	DNS       DNSConfig       `json:"dns"`
	API       APIConfig       `json:"api"`
	Metrics   MetricsConfig   `json:"metrics"`
	Datastore DatastoreConfig `json:"datastore"`
	ServerID  string          `json:"server_id"`
	Logging   LoggingConfig   `json:"logging"`
}
