// Command printrecords parses a datastore file and prints its records in
// zone-file order, without needing a running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Danton11/RIND/internal/records"
)

func main() {
	showIDs := flag.Bool("ids", false, "Prefix each record with its id")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: printrecords path/to/dns_records.txt\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	provider := records.NewFileProvider(path)
	recs, err := provider.LoadAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load records: %v\n", err)
		os.Exit(1)
	}

	list := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.RecordType != b.RecordType {
			return a.RecordType < b.RecordType
		}
		return a.ID < b.ID
	})

	for _, r := range list {
		if *showIDs {
			fmt.Printf("%s  ", r.ID)
		}
		fmt.Printf("%s %d %s %s %s\n", r.Name, r.TTL, r.Class, r.RecordType, rdata(r))
	}
	fmt.Printf("%d records\n", len(list))
}

// rdata renders the record's data column: the address for A records, the
// value for everything else.
func rdata(r records.Record) string {
	if r.IP != nil {
		return r.IP.String()
	}
	if r.Value != nil {
		return *r.Value
	}
	return ""
}
