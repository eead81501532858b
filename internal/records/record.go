// Package records implements the authoritative record set: the data
// model and its validation rules, the concurrent in-memory store, and the
// pluggable persistence providers behind it.
package records

import (
	"fmt"
	"net/netip"
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaxTTL caps record TTLs at seven days.
const MaxTTL = 604800

// Defaults applied when a create request omits the field.
const (
	DefaultTTL   uint32 = 300
	DefaultType  string = "A"
	DefaultClass string = "IN"
)

// recordTypes is the storable type set. Only A is served; the rest are
// storable so operators can stage data ahead of resolver support.
var recordTypes = map[string]bool{
	"A": true, "AAAA": true, "CNAME": true, "TXT": true, "MX": true,
	"NS": true, "PTR": true, "SOA": true, "SRV": true,
}

var recordClasses = map[string]bool{"IN": true, "CH": true, "HS": true}

// Record is one DNS resource record plus its management metadata.
//
// IP is present exactly for A records; Value carries the CNAME target or
// TXT payload. Timestamps are UTC instants: CreatedAt never changes after
// construction, UpdatedAt is refreshed on every successful mutation.
type Record struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	IP         *netip.Addr `json:"ip"`
	TTL        uint32      `json:"ttl"`
	RecordType string      `json:"record_type"`
	Class      string      `json:"class"`
	Value      *string     `json:"value"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Validate checks the record against the storable-set rules. The store
// enforces this on every path that admits a record, so an invalid record
// is never observable.
func (r *Record) Validate() error {
	if r.Name == "" {
		return NewValidationError("name", "Missing required field: name")
	}
	if !validName(r.Name) {
		return NewValidationError("name", fmt.Sprintf("invalid name %q: only letters, digits, '.', '-' and '_' are allowed", r.Name))
	}
	if r.TTL > MaxTTL {
		return NewValidationError("ttl", fmt.Sprintf("ttl %d exceeds maximum %d", r.TTL, MaxTTL))
	}
	if !recordTypes[r.RecordType] {
		return NewValidationError("record_type", fmt.Sprintf("unknown record type %q", r.RecordType))
	}
	if !recordClasses[r.Class] {
		return NewValidationError("class", fmt.Sprintf("unknown class %q", r.Class))
	}
	switch r.RecordType {
	case "A":
		if r.IP == nil {
			return NewValidationError("ip", "Missing required field: ip is required for A records")
		}
	case "CNAME", "TXT":
		if r.Value == nil {
			return NewValidationError("value", fmt.Sprintf("Missing required field: value is required for %s records", r.RecordType))
		}
	}
	return nil
}

// Touch refreshes the modification timestamp.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// HasSameContent reports whether two records carry the same data,
// ignoring identity and timestamps. Reload tests use it to compare a
// persisted set against the in-memory one.
func (r *Record) HasSameContent(other Record) bool {
	if r.Name != other.Name || r.TTL != other.TTL || r.RecordType != other.RecordType || r.Class != other.Class {
		return false
	}
	if (r.IP == nil) != (other.IP == nil) || (r.IP != nil && *r.IP != *other.IP) {
		return false
	}
	if (r.Value == nil) != (other.Value == nil) || (r.Value != nil && *r.Value != *other.Value) {
		return false
	}
	return true
}

func validName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// parseIPv4 parses an address string for a record, accepting plain IPv4
// and unwrapping IPv4-mapped IPv6.
func parseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, NewValidationError("ip", fmt.Sprintf("Invalid IP address: %s", s))
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return netip.Addr{}, NewValidationError("ip", fmt.Sprintf("Invalid IP address: %s is not IPv4", s))
	}
	return addr, nil
}

// CreateRequest is the control-plane payload for creating a record. Name
// is required; everything else falls back to the package defaults.
type CreateRequest struct {
	Name       string  `json:"name" binding:"required"`
	IP         *string `json:"ip,omitempty"`
	TTL        *uint32 `json:"ttl,omitempty"`
	RecordType *string `json:"record_type,omitempty"`
	Class      *string `json:"class,omitempty"`
	Value      *string `json:"value,omitempty"`
}

// NewRecord builds a full record from a create request: defaults applied,
// identity and both timestamps assigned, validation enforced.
func NewRecord(req CreateRequest) (Record, error) {
	now := time.Now().UTC()
	rec := Record{
		ID:         uuid.New().String(),
		Name:       req.Name,
		TTL:        DefaultTTL,
		RecordType: DefaultType,
		Class:      DefaultClass,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.TTL != nil {
		rec.TTL = *req.TTL
	}
	if req.RecordType != nil {
		rec.RecordType = *req.RecordType
	}
	if req.Class != nil {
		rec.Class = *req.Class
	}
	if req.IP != nil && *req.IP != "" {
		addr, err := parseIPv4(*req.IP)
		if err != nil {
			return Record{}, err
		}
		rec.IP = &addr
	}
	if req.Value != nil {
		v := *req.Value
		rec.Value = &v
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// UpdateRequest is the control-plane payload for a partial update. Absent
// fields keep their prior values; an explicitly empty value clears it.
type UpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	IP         *string `json:"ip,omitempty"`
	TTL        *uint32 `json:"ttl,omitempty"`
	RecordType *string `json:"record_type,omitempty"`
	Class      *string `json:"class,omitempty"`
	Value      *string `json:"value,omitempty"`
}

// Apply copies the patch onto rec. Validation is the caller's job: the
// store validates the patched record before committing it.
func (p UpdateRequest) Apply(rec *Record) error {
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.IP != nil {
		addr, err := parseIPv4(*p.IP)
		if err != nil {
			return err
		}
		rec.IP = &addr
	}
	if p.TTL != nil {
		rec.TTL = *p.TTL
	}
	if p.RecordType != nil {
		rec.RecordType = *p.RecordType
	}
	if p.Class != nil {
		rec.Class = *p.Class
	}
	if p.Value != nil {
		if *p.Value == "" {
			rec.Value = nil
		} else {
			v := *p.Value
			rec.Value = &v
		}
	}
	return nil
}

// LegacyRequest mirrors the historical /update payload: a full record
// with an optional id. The store decides whether the upsert creates or
// replaces.
type LegacyRequest struct {
	ID string `json:"id,omitempty"`
	CreateRequest
}

// Record converts the legacy payload into a storable record, keeping the
// caller-supplied id when present.
func (lr LegacyRequest) Record() (Record, error) {
	rec, err := NewRecord(lr.CreateRequest)
	if err != nil {
		return Record{}, err
	}
	if lr.ID != "" {
		rec.ID = lr.ID
	}
	return rec, nil
}

// sortRecords orders records the way listings and the datastore file do:
// created_at ascending with the id as tiebreak.
func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
}
