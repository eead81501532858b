package records

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Danton11/RIND/internal/metrics"
)

// MaxPerPage bounds listing page sizes.
const MaxPerPage = 1000

// ListPage is one page of records plus the paging echo.
type ListPage struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}

// Store owns the in-memory record set and its durable copy. A single
// reader-writer lock guards the map: resolver lookups and listings take
// the read side, mutations take the write side and persist through the
// provider before releasing it, so the durable copy always reflects the
// latest committed state. On a persist failure the mutation is rolled
// back and the store is left unchanged.
type Store struct {
	mu       sync.RWMutex
	records  map[string]Record
	provider DatastoreProvider
	sink     metrics.Sink
}

// NewStore builds an empty store over the given provider. A nil sink is
// replaced with a no-op one.
func NewStore(provider DatastoreProvider, sink metrics.Sink) *Store {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Store{
		records:  make(map[string]Record),
		provider: provider,
		sink:     sink,
	}
}

// Load replaces the in-memory set with the provider's contents. Records
// that fail validation, possible after hand edits to the datastore, are
// logged and dropped.
func (s *Store) Load(ctx context.Context) error {
	loaded, err := s.provider.LoadAll(ctx)
	if err != nil {
		return err
	}

	recs := make(map[string]Record, len(loaded))
	for id, rec := range loaded {
		if err := rec.Validate(); err != nil {
			slog.Warn("dropping invalid persisted record",
				"id", id, "name", rec.Name, "err", err)
			continue
		}
		recs[id] = rec
	}

	s.mu.Lock()
	s.records = recs
	s.mu.Unlock()

	s.sink.SetActiveRecords(len(recs))
	slog.Info("record store loaded", "records", len(recs))
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// List returns one page of records ordered by creation time, oldest
// first, with the id as tiebreak. Pages are 1-based.
func (s *Store) List(page, perPage int) (ListPage, error) {
	if page < 1 {
		return ListPage{}, NewValidationError("page", fmt.Sprintf("page %d is out of range: must be at least 1", page))
	}
	if perPage < 1 || perPage > MaxPerPage {
		return ListPage{}, NewValidationError("per_page", fmt.Sprintf("per_page %d is out of range: must be between 1 and %d", perPage, MaxPerPage))
	}

	s.mu.RLock()
	all := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		all = append(all, rec)
	}
	s.mu.RUnlock()

	sortRecords(all)
	total := len(all)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return ListPage{Records: all[start:end], Total: total, Page: page, PerPage: perPage}, nil
}

// Create validates the request, assigns identity and timestamps, enforces
// name/type uniqueness and commits the new record.
func (s *Store) Create(ctx context.Context, req CreateRequest) (Record, error) {
	start := time.Now()

	rec, err := NewRecord(req)
	if err != nil {
		s.fail("create", err, start)
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if other, ok := s.findByNameType(rec.Name, rec.RecordType, ""); ok {
		err := fmt.Errorf("%s/%s (id %s): %w", rec.Name, rec.RecordType, other.ID, ErrDuplicate)
		s.fail("create", err, start)
		return Record{}, err
	}

	s.records[rec.ID] = rec
	if err := s.persistLocked(ctx); err != nil {
		delete(s.records, rec.ID)
		s.fail("create", err, start)
		return Record{}, err
	}

	s.succeed("create", start)
	s.sink.SetActiveRecords(len(s.records))
	return rec, nil
}

// Update applies a partial patch to the record with the given id. Fields
// absent from the patch keep their prior values; an empty value string
// clears the value. Uniqueness is re-checked against the patched name and
// type, excluding the record itself.
func (s *Store) Update(ctx context.Context, id string, patch UpdateRequest) (Record, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.records[id]
	if !ok {
		err := fmt.Errorf("record %s: %w", id, ErrNotFound)
		s.fail("update", err, start)
		return Record{}, err
	}

	next := prior
	if err := patch.Apply(&next); err != nil {
		s.fail("update", err, start)
		return Record{}, err
	}
	if err := next.Validate(); err != nil {
		s.fail("update", err, start)
		return Record{}, err
	}
	if other, ok := s.findByNameType(next.Name, next.RecordType, id); ok {
		err := fmt.Errorf("%s/%s (id %s): %w", next.Name, next.RecordType, other.ID, ErrDuplicate)
		s.fail("update", err, start)
		return Record{}, err
	}

	next.Touch()
	s.records[id] = next
	if err := s.persistLocked(ctx); err != nil {
		s.records[id] = prior
		s.fail("update", err, start)
		return Record{}, err
	}

	s.succeed("update", start)
	s.sink.SetActiveRecords(len(s.records))
	return next, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.records[id]
	if !ok {
		err := fmt.Errorf("record %s: %w", id, ErrNotFound)
		s.fail("delete", err, start)
		return err
	}

	delete(s.records, id)
	if err := s.persistLocked(ctx); err != nil {
		s.records[id] = prior
		s.fail("delete", err, start)
		return err
	}

	s.succeed("delete", start)
	s.sink.SetActiveRecords(len(s.records))
	return nil
}

// UpsertLegacy creates or replaces a record by id for the fire-and-forget
// update endpoint. An empty id gets a fresh one; a replacement keeps the
// original creation time. Validation and uniqueness apply as on any other
// mutation.
func (s *Store) UpsertLegacy(ctx context.Context, rec Record) (Record, error) {
	start := time.Now()
	now := time.Now().UTC()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior, existed := s.records[rec.ID]
	op := "create"
	if existed {
		op = "update"
		rec.CreatedAt = prior.CreatedAt
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := rec.Validate(); err != nil {
		s.fail(op, err, start)
		return Record{}, err
	}
	if other, ok := s.findByNameType(rec.Name, rec.RecordType, rec.ID); ok {
		err := fmt.Errorf("%s/%s (id %s): %w", rec.Name, rec.RecordType, other.ID, ErrDuplicate)
		s.fail(op, err, start)
		return Record{}, err
	}

	s.records[rec.ID] = rec
	if err := s.persistLocked(ctx); err != nil {
		if existed {
			s.records[rec.ID] = prior
		} else {
			delete(s.records, rec.ID)
		}
		s.fail(op, err, start)
		return Record{}, err
	}

	s.succeed(op, start)
	s.sink.SetActiveRecords(len(s.records))
	return rec, nil
}

// Resolve returns the record serving (name, recordType), if any. The
// match is exact and case-sensitive on the name, which is the lookup the
// resolver has always done.
func (s *Store) Resolve(name, recordType string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Name == name && rec.RecordType == recordType {
			return rec, true
		}
	}
	return Record{}, false
}

// Count returns the number of records currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// findByNameType returns the record sharing name and type, ignoring
// excludeID. Callers must hold the lock.
func (s *Store) findByNameType(name, recordType, excludeID string) (Record, bool) {
	for _, rec := range s.records {
		if rec.ID != excludeID && rec.Name == name && rec.RecordType == recordType {
			return rec, true
		}
	}
	return Record{}, false
}

// persistLocked rewrites the durable copy. Callers must hold the write
// lock so the saved snapshot matches commit order.
func (s *Store) persistLocked(ctx context.Context) error {
	return s.provider.SaveAll(ctx, s.records)
}

func (s *Store) succeed(op string, start time.Time) {
	s.sink.RecordOperationSuccess(op, time.Since(start).Seconds())
}

func (s *Store) fail(op string, err error, start time.Time) {
	s.sink.RecordOperationFailure(op, ErrorType(err), time.Since(start).Seconds())
}
