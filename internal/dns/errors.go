// Package dns implements the wire codec for the authoritative server:
// parsing single-question UDP query datagrams and building response frames.
//
// Standards Compliance:
//
// This package implements DNS protocol features from the following RFCs:
//
//   - RFC 1035: Domain Names - Implementation and Specification (header,
//     question and resource record wire format)
//   - RFC 6891: Extension Mechanisms for DNS (EDNS0 OPT pseudo-records)
//
// The codec is deliberately narrow: one question per query, uncompressed
// names in both directions, and A answers only. Compression pointers in
// requests are rejected rather than followed.
//
// Error Handling:
//
// Parse failures are classified by three sentinel errors (ErrTooShort,
// ErrMalformed, ErrUnsupported) wrapped with context using
// fmt.Errorf("...: %w", err). Callers branch with errors.Is.
package dns

import "errors"

var (
	// ErrTooShort reports a datagram smaller than the fixed DNS header.
	ErrTooShort = errors.New("dns message too short")

	// ErrMalformed reports a structurally broken message: an offset that
	// runs past the end of the datagram or a non-ASCII label.
	ErrMalformed = errors.New("malformed dns message")

	// ErrUnsupported reports a well-formed message the server does not
	// serve: multi-question queries and compressed names in requests.
	ErrUnsupported = errors.New("unsupported dns message")
)
