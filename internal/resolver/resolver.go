// Package resolver turns parsed queries into wire-format answers using
// the record store.
package resolver

import (
	"net/netip"

	"github.com/Danton11/RIND/internal/dns"
	"github.com/Danton11/RIND/internal/records"
)

// negativeTTL is stamped on negative responses. No answer record is
// emitted for them, so the value only documents intent.
const negativeTTL = 60

// Resolver answers queries from the record store. Only A records produce
// positive answers; a name that resolves to any other stored type, or to
// nothing, is NXDOMAIN.
type Resolver struct {
	store *records.Store
}

// New returns a resolver over store.
func New(store *records.Store) *Resolver {
	return &Resolver{store: store}
}

// Answer resolves q and returns the response frame with its response
// code for accounting. It never fails: a query with no questions gets a
// FORMERR frame, and everything else degrades to NXDOMAIN.
//
// Name matching is exact and case-sensitive.
func (r *Resolver) Answer(q dns.Query) ([]byte, dns.RCode) {
	if len(q.Questions) == 0 {
		return dns.BuildResponse(q, netip.Addr{}, dns.RCodeFormErr, 0, "A", "IN"), dns.RCodeFormErr
	}

	question := q.Questions[0]
	rec, ok := r.store.Resolve(question.Name, dns.TypeString(question.Type))
	if ok && rec.RecordType == "A" && rec.IP != nil {
		return dns.BuildResponse(q, *rec.IP, dns.RCodeNoError, rec.TTL, rec.RecordType, rec.Class), dns.RCodeNoError
	}

	return dns.BuildResponse(q, netip.IPv4Unspecified(), dns.RCodeNXDomain, negativeTTL, "A", "IN"), dns.RCodeNXDomain
}
