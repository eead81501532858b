package records

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// The datastore file stores one record per line. The canonical shape is
//
//	id:name:ip:ttl:type:class[:value]
//
// where id is a 36-character UUID, ip is empty for records without an
// address, and value appears only for CNAME and TXT. Because the line is
// split at most seven times, values may themselves contain colons.
//
// Three older shapes predate the id field and are still readable:
//
//	name:ip:ttl:type:class        any record with five or more fields
//	name:target:ttl:class         CNAME, when the name starts with 'C'
//	'name':text:ttl:type:class    TXT, when the name starts with a quote
//
// The arms are tried in that order. The TXT arm is shadowed by the
// five-field arm above it and never matches; it is kept to document the
// historical shape.

// EncodeLine renders rec as one canonical datastore line.
func EncodeLine(rec Record) string {
	ip := ""
	if rec.IP != nil {
		ip = rec.IP.String()
	}
	line := fmt.Sprintf("%s:%s:%s:%d:%s:%s", rec.ID, rec.Name, ip, rec.TTL, rec.RecordType, rec.Class)
	if rec.Value != nil {
		line += ":" + *rec.Value
	}
	return line
}

// ParseLine decodes a datastore line in either the canonical or a legacy
// shape. The file carries no timestamps, so both are set to loadedAt;
// legacy lines additionally get a freshly generated id.
func ParseLine(line string, loadedAt time.Time) (Record, error) {
	if isCanonicalLine(line) {
		return parseCanonicalLine(line, loadedAt)
	}
	return parseLegacyLine(line, loadedAt)
}

// isCanonicalLine reports whether line opens with a 36-character UUID id
// field, the marker of the canonical shape.
func isCanonicalLine(line string) bool {
	parts := strings.SplitN(line, ":", 7)
	if len(parts) < 6 {
		return false
	}
	return len(parts[0]) == 36 && uuid.Validate(parts[0]) == nil
}

func parseCanonicalLine(line string, loadedAt time.Time) (Record, error) {
	parts := strings.SplitN(line, ":", 7)
	rec := Record{
		ID:         parts[0],
		Name:       parts[1],
		RecordType: parts[4],
		Class:      parts[5],
		CreatedAt:  loadedAt,
		UpdatedAt:  loadedAt,
	}
	if parts[2] != "" {
		addr, err := netip.ParseAddr(parts[2])
		if err != nil {
			return Record{}, fmt.Errorf("invalid ip %q: %v", parts[2], err)
		}
		rec.IP = &addr
	}
	ttl, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("invalid ttl %q: %v", parts[3], err)
	}
	rec.TTL = uint32(ttl)
	if len(parts) == 7 {
		v := parts[6]
		rec.Value = &v
	}
	return rec, nil
}

func parseLegacyLine(line string, loadedAt time.Time) (Record, error) {
	parts := strings.Split(line, ":")
	switch {
	case len(parts) >= 5:
		ttl, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return Record{}, fmt.Errorf("invalid ttl %q: %v", parts[2], err)
		}
		rec := Record{
			ID:         uuid.New().String(),
			Name:       parts[0],
			TTL:        uint32(ttl),
			RecordType: parts[3],
			Class:      parts[4],
			CreatedAt:  loadedAt,
			UpdatedAt:  loadedAt,
		}
		// Unparseable addresses are tolerated here: old files carried
		// CNAME targets in the ip column.
		if addr, err := netip.ParseAddr(parts[1]); err == nil {
			rec.IP = &addr
		}
		return rec, nil

	case len(parts) == 4 && strings.HasPrefix(parts[0], "C"):
		ttl, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return Record{}, fmt.Errorf("invalid ttl %q: %v", parts[2], err)
		}
		target := parts[1]
		return Record{
			ID:         uuid.New().String(),
			Name:       parts[0],
			TTL:        uint32(ttl),
			RecordType: "CNAME",
			Class:      parts[3],
			Value:      &target,
			CreatedAt:  loadedAt,
			UpdatedAt:  loadedAt,
		}, nil

	case len(parts) == 5 && strings.HasPrefix(parts[0], "'"):
		ttl, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return Record{}, fmt.Errorf("invalid ttl %q: %v", parts[2], err)
		}
		text := parts[1]
		return Record{
			ID:         uuid.New().String(),
			Name:       strings.Trim(parts[0], "'"),
			TTL:        uint32(ttl),
			RecordType: "TXT",
			Class:      parts[4],
			Value:      &text,
			CreatedAt:  loadedAt,
			UpdatedAt:  loadedAt,
		}, nil

	default:
		return Record{}, fmt.Errorf("unrecognized record line with %d fields", len(parts))
	}
}
