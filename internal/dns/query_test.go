package dns

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseQuery(t *testing.T) {
	msg := []byte{
		0x12, 0x34, // ID
		0x01, 0x00, // Flags: standard query, RD set
		0x00, 0x01, // QDCount = 1
		0x00, 0x00, // ANCount
		0x00, 0x00, // NSCount
		0x00, 0x00, // ARCount
		3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, // QType A
		0x00, 0x01, // QClass IN
	}

	q, err := ParseQuery(msg)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.ID != 0x1234 {
		t.Errorf("expected ID 0x1234, got 0x%04x", q.ID)
	}
	if q.Flags != 0x0100 {
		t.Errorf("expected flags 0x0100, got 0x%04x", q.Flags)
	}
	if len(q.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(q.Questions))
	}
	if q.Questions[0].Name != "www.example.com" {
		t.Errorf("expected name www.example.com, got %s", q.Questions[0].Name)
	}
	if q.Questions[0].Type != uint16(TypeA) {
		t.Errorf("expected qtype A, got %d", q.Questions[0].Type)
	}
	if q.Questions[0].Class != uint16(ClassIN) {
		t.Errorf("expected qclass IN, got %d", q.Questions[0].Class)
	}
	if q.HasOPT {
		t.Error("expected no OPT record")
	}
	if q.OPTPayloadSize != DefaultUDPPayloadSize {
		t.Errorf("expected default payload size %d, got %d", DefaultUDPPayloadSize, q.OPTPayloadSize)
	}
}

func TestParseQueryShortName(t *testing.T) {
	msg := []byte{
		0x12, 0x34,
		0x01, 0x00,
		0x00, 0x01,
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00,
		1, 'a', 3, 'c', 'o', 'm', 0,
		0x00, 0x01,
		0x00, 0x01,
	}

	q, err := ParseQuery(msg)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.Questions[0].Name != "a.com" {
		t.Errorf("expected name a.com, got %s", q.Questions[0].Name)
	}
}

func TestParseQueryTooShort(t *testing.T) {
	_, err := ParseQuery([]byte{0x01, 0x02, 0x03})
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestParseQueryEmpty(t *testing.T) {
	_, err := ParseQuery(nil)
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestParseQueryZeroQuestions(t *testing.T) {
	msg := []byte{0x12, 0x34, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, err := ParseQuery(msg)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseQueryMultipleQuestions(t *testing.T) {
	msg := []byte{
		0x12, 0x34, 0x01, 0x00,
		0x00, 0x02, // QDCount = 2
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		1, 'a', 3, 'c', 'o', 'm', 0, 0x00, 0x01, 0x00, 0x01,
		1, 'b', 3, 'c', 'o', 'm', 0, 0x00, 0x01, 0x00, 0x01,
	}
	_, err := ParseQuery(msg)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseQueryGarbageHeader(t *testing.T) {
	msg := bytes.Repeat([]byte{0xFF}, 12)
	if _, err := ParseQuery(msg); err == nil {
		t.Error("expected error for garbage header")
	}
}

func TestParseQueryTruncatedQuestion(t *testing.T) {
	msg := []byte{
		0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		3, 'w', 'w', // incomplete label
	}
	_, err := ParseQuery(msg)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestParseQueryMissingTypeClass(t *testing.T) {
	msg := []byte{
		0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		1, 'a', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, // qtype present, qclass missing
	}
	_, err := ParseQuery(msg)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestParseQueryCompressedName(t *testing.T) {
	msg := []byte{
		0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xC0, 0x0C, // compression pointer instead of a literal name
		0x00, 0x01, 0x00, 0x01,
	}
	_, err := ParseQuery(msg)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

// ==================== EDNS0 / OPT ====================

func TestParseQueryWithOPT(t *testing.T) {
	msg := []byte{
		0x12, 0x34,
		0x01, 0x00,
		0x00, 0x01, // QDCount
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x01, // ARCount = 1
		1, 'a', 3, 'c', 'o', 'm', 0,
		0x00, 0x01,
		0x00, 0x01,
		0x00,       // OPT root name
		0x00, 0x29, // type 41
		0x10, 0x00, // requestor payload size 4096
		0x00, 0x00, 0x00, 0x00, // extended rcode/version/flags
		0x00, 0x00, // rdlength
	}

	q, err := ParseQuery(msg)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if !q.HasOPT {
		t.Error("expected OPT record")
	}
	if q.OPTPayloadSize != 4096 {
		t.Errorf("expected payload size 4096, got %d", q.OPTPayloadSize)
	}
}

func TestParseQueryOPTTruncatedBody(t *testing.T) {
	// ARCount promises an OPT but only the root name and the type follow.
	// The record is advisory, so the query keeps the 512-byte default.
	msg := []byte{
		0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		1, 'a', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, 0x00, 0x01,
		0x00,
		0x00, 0x29,
	}

	q, err := ParseQuery(msg)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.HasOPT {
		t.Error("expected truncated OPT to be ignored")
	}
	if q.OPTPayloadSize != DefaultUDPPayloadSize {
		t.Errorf("expected default payload size, got %d", q.OPTPayloadSize)
	}
}

func TestParseQueryOPTWrongType(t *testing.T) {
	// An additional record that is not an OPT keeps the default payload size.
	msg := []byte{
		0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		1, 'a', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, 0x00, 0x01,
		0x00,
		0x00, 0x01, // type A, not OPT
		0x00, 0x01,
		0x00, 0x00, 0x00, 0x3C,
		0x00, 0x00,
	}

	q, err := ParseQuery(msg)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q.HasOPT {
		t.Error("expected non-OPT additional to be ignored")
	}
	if q.OPTPayloadSize != DefaultUDPPayloadSize {
		t.Errorf("expected default payload size, got %d", q.OPTPayloadSize)
	}
}

func TestParseQueryOPTMissingEntirely(t *testing.T) {
	// ARCount = 1 with no additional bytes at all fails the parse: not even
	// the record's name can be read.
	msg := []byte{
		0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		1, 'a', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, 0x00, 0x01,
	}
	_, err := ParseQuery(msg)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestQuestionMarshal(t *testing.T) {
	q := Question{Name: "example.com", Type: uint16(TypeA), Class: uint16(ClassIN)}
	b, err := q.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	exp := []byte{
		7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0,
		0x00, 0x01,
		0x00, 0x01,
	}
	if !bytes.Equal(b, exp) {
		t.Errorf("wire mismatch\n got: % x\nwant: % x", b, exp)
	}
}

func TestQuestionMarshalInvalidName(t *testing.T) {
	long := bytes.Repeat([]byte{'a'}, 70)
	q := Question{Name: string(long) + ".com", Type: uint16(TypeA), Class: uint16(ClassIN)}
	if _, err := q.Marshal(); err == nil {
		t.Error("expected error for invalid question name")
	}
}

func BenchmarkParseQuery(b *testing.B) {
	msg := []byte{
		0x12, 0x34, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, 0x00, 0x01,
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseQuery(msg); err != nil {
			b.Fatal(err)
		}
	}
}
