// Command bench generates UDP query load against a running server and
// reports throughput plus latency percentiles.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"net"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Danton11/RIND/internal/dns"
	"github.com/Danton11/RIND/internal/helpers"
)

func main() {
	var (
		server      = flag.String("server", "127.0.0.1:12312", "DNS server HOST:PORT")
		name        = flag.String("name", "example.com", "Query name")
		qtype       = flag.Int("qtype", 1, "Query type (numeric, A=1)")
		concurrency = flag.Int("concurrency", 200, "Number of concurrent workers")
		requests    = flag.Int("requests", 20000, "Total number of requests")
		timeout     = flag.Duration("timeout", 2*time.Second, "Per-request timeout")
		recvSize    = flag.Int("recv-size", 2048, "UDP receive buffer size")
	)
	flag.Parse()

	addr, err := net.ResolveUDPAddr("udp", *server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench error: %v\n", err)
		os.Exit(1)
	}

	reqBytes, err := buildQuery(*name, *qtype)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench error: %v\n", err)
		os.Exit(1)
	}

	conc := max(*concurrency, 1)
	total := max(*requests, 1)
	per := total / conc
	rem := total % conc

	var (
		latMu  sync.Mutex
		lat    = make([]float64, 0, total)
		rcodes = make(map[dns.RCode]int)
	)

	t0 := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < conc; i++ {
		n := per
		if i < rem {
			n++
		}
		if n <= 0 {
			continue
		}
		wg.Add(1)
		go func(num int) {
			defer wg.Done()
			c, err := net.DialUDP("udp", nil, addr)
			if err != nil {
				return
			}
			defer c.Close()
			buf := make([]byte, helpers.ClampInt(*recvSize, dns.HeaderSize, math.MaxUint16))
			for j := 0; j < num; j++ {
				start := time.Now()
				_ = c.SetDeadline(time.Now().Add(*timeout))
				if _, err := c.Write(reqBytes); err != nil {
					continue
				}
				nn, err := c.Read(buf)
				if err != nil || nn < dns.HeaderSize {
					continue
				}
				rcode := dns.RCodeFromFlags(binary.BigEndian.Uint16(buf[2:4]))
				ms := float64(time.Since(start).Microseconds()) / 1000.0
				latMu.Lock()
				lat = append(lat, ms)
				rcodes[rcode]++
				latMu.Unlock()
			}
		}(n)
	}
	wg.Wait()
	elapsed := time.Since(t0).Seconds()

	if len(lat) == 0 {
		fmt.Println("no successful requests")
		os.Exit(1)
	}
	sort.Float64s(lat)
	qps := float64(len(lat)) / elapsed

	fmt.Printf("server=%s name=%q qtype=%d concurrency=%d requests=%d\n", *server, *name, *qtype, conc, len(lat))
	fmt.Printf("elapsed_s=%.3f qps=%.1f\n", elapsed, qps)
	fmt.Printf("latency_ms p50=%.3f p95=%.3f p99=%.3f min=%.3f max=%.3f\n",
		percentile(lat, 50), percentile(lat, 95), percentile(lat, 99), lat[0], lat[len(lat)-1])
	for rcode, count := range rcodes {
		fmt.Printf("rcode %s=%d\n", rcode, count)
	}
}

// buildQuery builds one query frame for the flag-supplied name and
// numeric type. The type is clamped to the wire range rather than
// truncated, so -qtype 70000 benchmarks type 65535 instead of a
// surprise type 4464.
func buildQuery(name string, qtype int) ([]byte, error) {
	h := dns.Header{ID: 0xBEEF, Flags: dns.RDFlag, QDCount: 1}
	q := dns.Question{Name: name, Type: helpers.ClampIntToUint16(qtype), Class: uint16(dns.ClassIN)}
	body, err := q.Marshal()
	if err != nil {
		return nil, err
	}
	return append(h.Marshal(), body...), nil
}

func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted))*float64(p)/100.0) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
