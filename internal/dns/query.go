package dns

import (
	"encoding/binary"
	"fmt"
)

// Question represents a DNS question section entry (RFC 1035 Section 4.1.2).
//
// Each question specifies what the client is asking for:
//   - Name: The domain name being queried
//   - Type: The record type requested (A, AAAA, MX, etc.)
//   - Class: Usually ClassIN (Internet)
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// Marshal serializes the question to DNS wire format.
func (q Question) Marshal() ([]byte, error) {
	name, err := EncodeName(q.Name)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, len(name)+4)
	b = append(b, name...)
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], q.Type)
	binary.BigEndian.PutUint16(buf[2:4], q.Class)
	b = append(b, buf...)
	return b, nil
}

// ParseQuestion parses a question from the message at the given offset.
// It advances *off past the parsed question on success.
func ParseQuestion(msg []byte, off *int) (Question, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return Question{}, err
	}
	if *off+4 > len(msg) {
		return Question{}, fmt.Errorf("%w: unexpected EOF while reading question", ErrMalformed)
	}
	q := Question{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[*off : *off+2]),
		Class: binary.BigEndian.Uint16(msg[*off+2 : *off+4]),
	}
	*off += 4
	return q, nil
}

// Query is a parsed DNS query datagram.
//
// Only single-question queries are representable: ParseQuery rejects
// anything else, and the resolver answers Questions[0]. HasOPT and
// OPTPayloadSize carry the requestor's EDNS0 advertisement when present;
// OPTPayloadSize defaults to the classic 512-byte limit otherwise.
type Query struct {
	ID             uint16
	Flags          uint16
	Questions      []Question
	HasOPT         bool
	OPTPayloadSize uint16
}

// ParseQuery parses a query datagram into a Query.
//
// Contract:
//   - fewer than 12 bytes: ErrTooShort
//   - qdcount != 1: ErrUnsupported
//   - compression pointer in the question name: ErrUnsupported
//   - any read past the end of msg, or a non-ASCII label: ErrMalformed
//
// When arcount > 0 a single EDNS0 OPT pseudo-record is expected directly
// after the question. Its name must decode, but a truncated or non-OPT
// body is tolerated and the query keeps the 512-byte default.
func ParseQuery(msg []byte) (Query, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Query{}, err
	}
	if h.QDCount != 1 {
		return Query{}, fmt.Errorf("%w: question count %d", ErrUnsupported, h.QDCount)
	}

	question, err := ParseQuestion(msg, &off)
	if err != nil {
		return Query{}, err
	}

	query := Query{
		ID:             h.ID,
		Flags:          h.Flags,
		Questions:      []Question{question},
		OPTPayloadSize: DefaultUDPPayloadSize,
	}

	if h.ARCount > 0 {
		size, ok, err := parseOPT(msg, &off)
		if err != nil {
			return Query{}, err
		}
		if ok {
			query.HasOPT = true
			query.OPTPayloadSize = size
		}
	}

	return query, nil
}
