package dns

import "encoding/binary"

// EDNS (Extension Mechanisms for DNS) constants per RFC 6891.
const (
	// DefaultUDPPayloadSize is the traditional DNS UDP limit (RFC 1035),
	// assumed for clients that send no OPT record.
	DefaultUDPPayloadSize = 512

	// AdvertisedUDPPayloadSize is the payload size this server advertises
	// in the OPT record of every response.
	AdvertisedUDPPayloadSize = 4096
)

// optFixedLen is the wire size of an OPT pseudo-record with empty RDATA:
// root name (1) + type (2) + class (2) + TTL (4) + rdlength (2).
const optFixedLen = 11

// parseOPT reads an EDNS0 OPT pseudo-record (RFC 6891 Section 6.1.2) at
// the given offset and returns the advertised UDP payload size. It
// advances *off past the record's name.
//
// The OPT record abuses the resource record layout:
//   - NAME: must be root (a single 0x00 byte)
//   - TYPE: 41 (OPT)
//   - CLASS: requestor's UDP payload size (not a class!)
//   - TTL: extended RCODE, version, and flags (ignored here)
//   - RDATA: options (ignored here)
//
// The name must decode cleanly; a truncated or non-OPT body after it
// reports ok=false without failing the whole parse.
func parseOPT(msg []byte, off *int) (size uint16, ok bool, err error) {
	if _, err := DecodeName(msg, off); err != nil {
		return 0, false, err
	}
	if *off+10 > len(msg) {
		return 0, false, nil
	}
	if RecordType(binary.BigEndian.Uint16(msg[*off:*off+2])) != TypeOPT {
		return 0, false, nil
	}
	return binary.BigEndian.Uint16(msg[*off+2 : *off+4]), true, nil
}

// appendOPT appends the OPT pseudo-record this server attaches to every
// response: root name, type 41, class = AdvertisedUDPPayloadSize, zeroed
// extended RCODE/version/flags, empty RDATA.
func appendOPT(dst []byte) []byte {
	fixed := make([]byte, optFixedLen)
	// fixed[0] is the root name
	binary.BigEndian.PutUint16(fixed[1:3], uint16(TypeOPT))
	binary.BigEndian.PutUint16(fixed[3:5], AdvertisedUDPPayloadSize)
	// fixed[5:9] extended RCODE, version and flags stay zero
	// fixed[9:11] rdlength stays zero
	return append(dst, fixed...)
}
