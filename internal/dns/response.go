package dns

import (
	"encoding/binary"
	"net/netip"
)

// answerFixedLen is the post-name wire size of one A answer:
// type (2) + class (2) + TTL (4) + rdlength (2) + rdata (4).
const answerFixedLen = 14

// BuildResponse builds the response frame for q.
//
// The header echoes the query id and flags with the QR bit set and rcode
// OR-ed into the low nibble. The question section repeats the original
// question uncompressed. When rcode is NOERROR exactly one A answer is
// emitted carrying addr and ttl; every other rcode produces an empty
// answer section. An OPT record advertising AdvertisedUDPPayloadSize is
// always appended, whether or not the query carried one.
//
// recordType and class are informational; only A/IN answers are
// synthesised. BuildResponse never fails: a question name that cannot be
// re-encoded degrades to a SERVFAIL frame with a root question name.
func BuildResponse(q Query, addr netip.Addr, rcode RCode, ttl uint32, recordType, class string) []byte {
	question := Question{Type: uint16(TypeA), Class: uint16(ClassIN)}
	if len(q.Questions) > 0 {
		question = q.Questions[0]
	}

	nameBytes, err := EncodeName(question.Name)
	if err != nil {
		rcode = RCodeServFail
		nameBytes = []byte{0}
	}

	flags := q.Flags | QRFlag | (uint16(rcode) & RCodeMask)
	anCount := uint16(0)
	if rcode == RCodeNoError {
		anCount = 1
	}

	h := Header{
		ID:      q.ID,
		Flags:   flags,
		QDCount: 1,
		ANCount: anCount,
		NSCount: 0,
		ARCount: 1,
	}

	out := make([]byte, 0, HeaderSize+2*len(nameBytes)+4+answerFixedLen+optFixedLen)
	out = append(out, h.Marshal()...)

	// Question section: the original name, uncompressed.
	out = append(out, nameBytes...)
	var qFixed [4]byte
	binary.BigEndian.PutUint16(qFixed[0:2], question.Type)
	binary.BigEndian.PutUint16(qFixed[2:4], question.Class)
	out = append(out, qFixed[:]...)

	// Answer section: one A record, name repeated rather than compressed.
	if anCount == 1 {
		out = append(out, nameBytes...)
		fixed := make([]byte, 10)
		binary.BigEndian.PutUint16(fixed[0:2], uint16(TypeA))
		binary.BigEndian.PutUint16(fixed[2:4], uint16(ClassIN))
		binary.BigEndian.PutUint32(fixed[4:8], ttl)
		binary.BigEndian.PutUint16(fixed[8:10], 4)
		out = append(out, fixed...)
		octets := ipv4Octets(addr)
		out = append(out, octets[:]...)
	}

	return appendOPT(out)
}

// ipv4Octets returns the four address bytes of an IPv4 (or IPv4-mapped)
// address, or 0.0.0.0 for anything else. Negative answers pass the zero
// Addr through here.
func ipv4Octets(addr netip.Addr) [4]byte {
	if addr.Is4() || addr.Is4In6() {
		return addr.As4()
	}
	return [4]byte{}
}
