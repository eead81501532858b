// Command dnsquery sends one DNS query and prints the response. Useful
// for poking a running server without installing dig.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

func main() {
	var (
		server  = flag.String("server", "127.0.0.1:12312", "DNS server HOST:PORT")
		name    = flag.String("name", "example.com", "Query name")
		qtype   = flag.String("qtype", "A", "Query type (A, AAAA, TXT, ...)")
		timeout = flag.Duration("timeout", 2*time.Second, "Per-request timeout")
		quiet   = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Parse()

	t, ok := mdns.StringToType[strings.ToUpper(strings.TrimSpace(*qtype))]
	if !ok {
		fmt.Fprintf(os.Stderr, "dnsquery error: unknown qtype %q\n", *qtype)
		os.Exit(2)
	}

	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(*name), t)

	client := &mdns.Client{Timeout: *timeout}
	resp, rtt, err := client.Exchange(msg, *server)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "dnsquery error: %v\n", err)
		}
		os.Exit(1)
	}
	if *quiet {
		return
	}

	fmt.Printf("id=%d rcode=%s answers=%d rtt=%s\n",
		resp.Id, mdns.RcodeToString[resp.Rcode], len(resp.Answer), rtt.Round(time.Microsecond))
	for _, rr := range resp.Answer {
		fmt.Println(rr.String())
	}
	if opt := resp.IsEdns0(); opt != nil {
		fmt.Printf("; EDNS0 udp=%d\n", opt.UDPSize())
	}
}
