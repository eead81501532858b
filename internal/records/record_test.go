package records

import (
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	addr := netip.MustParseAddr("192.0.2.1")
	now := time.Now().UTC()
	return Record{
		ID:         uuid.NewString(),
		Name:       "example.com",
		IP:         &addr,
		TTL:        300,
		RecordType: "A",
		Class:      "IN",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func strPtr(s string) *string { return &s }

func u32Ptr(v uint32) *uint32 { return &v }

func TestNewRecordDefaults(t *testing.T) {
	rec, err := NewRecord(CreateRequest{Name: "example.com", IP: strPtr("192.0.2.1")})
	require.NoError(t, err)

	assert.Len(t, rec.ID, 36, "expected a UUID id")
	require.NoError(t, uuid.Validate(rec.ID))
	assert.Equal(t, uint32(300), rec.TTL)
	assert.Equal(t, "A", rec.RecordType)
	assert.Equal(t, "IN", rec.Class)
	assert.Equal(t, "192.0.2.1", rec.IP.String())
	assert.Nil(t, rec.Value)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.True(t, rec.CreatedAt.Equal(rec.UpdatedAt), "fresh records share both timestamps")
}

func TestNewRecordExplicitFields(t *testing.T) {
	rec, err := NewRecord(CreateRequest{
		Name:       "alias.example.com",
		TTL:        u32Ptr(600),
		RecordType: strPtr("CNAME"),
		Class:      strPtr("CH"),
		Value:      strPtr("example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, uint32(600), rec.TTL)
	assert.Equal(t, "CNAME", rec.RecordType)
	assert.Equal(t, "CH", rec.Class)
	assert.Nil(t, rec.IP)
	require.NotNil(t, rec.Value)
	assert.Equal(t, "example.com", *rec.Value)
}

func TestNewRecordRejectsBadIP(t *testing.T) {
	_, err := NewRecord(CreateRequest{Name: "example.com", IP: strPtr("not-an-ip")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid IP address: not-an-ip")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "ip", ve.Field)
}

func TestNewRecordRejectsIPv6(t *testing.T) {
	_, err := NewRecord(CreateRequest{Name: "example.com", IP: strPtr("2001:db8::1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid IP address")
}

func TestNewRecordAcceptsMappedIPv4(t *testing.T) {
	rec, err := NewRecord(CreateRequest{Name: "example.com", IP: strPtr("::ffff:192.0.2.7")})
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7", rec.IP.String())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		field   string
		message string
	}{
		{"missing name", func(r *Record) { r.Name = "" }, "name", "Missing required field: name"},
		{"bad name characters", func(r *Record) { r.Name = "no spaces allowed" }, "name", "invalid name"},
		{"ttl over maximum", func(r *Record) { r.TTL = MaxTTL + 1 }, "ttl", "exceeds maximum"},
		{"unknown record type", func(r *Record) { r.RecordType = "BOGUS" }, "record_type", "unknown record type"},
		{"unknown class", func(r *Record) { r.Class = "XX" }, "class", "unknown class"},
		{"a record without ip", func(r *Record) { r.IP = nil }, "ip", "Missing required field: ip"},
		{
			"cname without value",
			func(r *Record) { r.RecordType = "CNAME"; r.IP = nil; r.Value = nil },
			"value", "Missing required field: value",
		},
		{
			"txt without value",
			func(r *Record) { r.RecordType = "TXT"; r.IP = nil; r.Value = nil },
			"value", "Missing required field: value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			err := rec.Validate()
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidateAcceptsStorableTypes(t *testing.T) {
	// Non-A types without a value requirement need neither ip nor value.
	for _, typ := range []string{"AAAA", "MX", "NS", "PTR", "SOA", "SRV"} {
		rec := validRecord()
		rec.RecordType = typ
		rec.IP = nil
		assert.NoError(t, rec.Validate(), "type %s should be storable", typ)
	}
}

func TestValidateMaxTTLBoundary(t *testing.T) {
	rec := validRecord()
	rec.TTL = MaxTTL
	assert.NoError(t, rec.Validate())
}

func TestApplyPartialPatch(t *testing.T) {
	rec := validRecord()
	before := rec

	require.NoError(t, UpdateRequest{TTL: u32Ptr(900)}.Apply(&rec))

	assert.Equal(t, uint32(900), rec.TTL)
	assert.Equal(t, before.Name, rec.Name, "unpatched fields keep their values")
	assert.Equal(t, before.IP, rec.IP)
	assert.Equal(t, before.RecordType, rec.RecordType)
}

func TestApplyEmptyValueClears(t *testing.T) {
	rec := validRecord()
	rec.RecordType = "TXT"
	rec.IP = nil
	rec.Value = strPtr("some text")

	require.NoError(t, UpdateRequest{Value: strPtr("")}.Apply(&rec))
	assert.Nil(t, rec.Value, "an explicitly empty value clears the field")
}

func TestApplyRejectsBadIP(t *testing.T) {
	rec := validRecord()
	err := UpdateRequest{IP: strPtr("999.1.1.1")}.Apply(&rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid IP address")
}

func TestSortRecordsOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := validRecord()
	a.ID = "bbbbbbbb-0000-0000-0000-000000000000"
	a.CreatedAt = base.Add(time.Minute)

	b := validRecord()
	b.ID = "aaaaaaaa-0000-0000-0000-000000000000"
	b.CreatedAt = base.Add(time.Minute)

	c := validRecord()
	c.ID = "cccccccc-0000-0000-0000-000000000000"
	c.CreatedAt = base

	recs := []Record{a, b, c}
	sortRecords(recs)

	assert.Equal(t, c.ID, recs[0].ID, "oldest record first")
	assert.Equal(t, b.ID, recs[1].ID, "ties broken by id")
	assert.Equal(t, a.ID, recs[2].ID)
}

func TestHasSameContent(t *testing.T) {
	a := validRecord()
	b := a
	b.ID = uuid.NewString()
	b.CreatedAt = b.CreatedAt.Add(time.Hour)
	assert.True(t, a.HasSameContent(b), "identity and timestamps are ignored")

	b.TTL = 999
	assert.False(t, a.HasSameContent(b))
}
