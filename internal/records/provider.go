package records

import "context"

// DatastoreProvider abstracts the durable copy of the record set. The
// store holds exactly one provider and calls SaveAll under its write
// lock, so implementations never see concurrent mutations.
type DatastoreProvider interface {
	// Initialize prepares the backing storage, creating the file or the
	// schema when missing. Idempotent and safe on existing data.
	Initialize(ctx context.Context) error

	// HealthCheck verifies the storage is reachable.
	HealthCheck(ctx context.Context) error

	// LoadAll reads every persisted record, keyed by id. Malformed
	// entries are logged and skipped, never fatal.
	LoadAll(ctx context.Context) (map[string]Record, error)

	// SaveAll replaces the persisted set with exactly these records.
	SaveAll(ctx context.Context, recs map[string]Record) error

	// Close releases any resources held by the provider.
	Close() error
}
