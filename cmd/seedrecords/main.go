// Command seedrecords loads a fixture set of A records into a running
// server through the management API. By default it uses the legacy
// /update endpoint; -create switches to POST /records, which reports
// per-record failures.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

type seedRecord struct {
	Name       string `json:"name"`
	IP         string `json:"ip"`
	TTL        uint32 `json:"ttl"`
	RecordType string `json:"record_type"`
	Class      string `json:"class"`
}

var fixtures = []seedRecord{
	{Name: "facebook.com", IP: "157.240.241.35", TTL: 300},
	{Name: "twitter.com", IP: "104.244.42.129", TTL: 300},
	{Name: "youtube.com", IP: "142.250.191.14", TTL: 300},
	{Name: "amazon.com", IP: "205.251.242.103", TTL: 300},
	{Name: "netflix.com", IP: "54.155.178.5", TTL: 300},
	{Name: "stackoverflow.com", IP: "151.101.1.69", TTL: 600},
	{Name: "reddit.com", IP: "151.101.65.140", TTL: 300},
	{Name: "docker.com", IP: "44.192.134.240", TTL: 300},
	{Name: "kubernetes.io", IP: "147.75.40.148", TTL: 300},
	{Name: "mail.company.local", IP: "192.168.1.10", TTL: 3600},
	{Name: "web.company.local", IP: "192.168.1.20", TTL: 3600},
	{Name: "db.company.local", IP: "192.168.1.30", TTL: 7200},
	{Name: "backup.company.local", IP: "192.168.1.40", TTL: 86400},
	{Name: "short-ttl.test", IP: "1.1.1.1", TTL: 60},
	{Name: "long-ttl.test", IP: "8.8.4.4", TTL: 86400},
	{Name: "cdn1.mysite.com", IP: "203.0.113.10", TTL: 300},
	{Name: "cdn2.mysite.com", IP: "203.0.113.20", TTL: 300},
	{Name: "edge.mysite.com", IP: "203.0.113.30", TTL: 300},
}

func main() {
	var (
		apiBase = flag.String("api", "http://127.0.0.1:8080", "Base URL of the management API")
		create  = flag.Bool("create", false, "Use POST /records instead of the legacy /update endpoint")
		timeout = flag.Duration("timeout", 5*time.Second, "Per-request timeout")
	)
	flag.Parse()

	endpoint := *apiBase + "/update"
	wantStatus := http.StatusOK
	if *create {
		endpoint = *apiBase + "/records"
		wantStatus = http.StatusCreated
	}

	client := &http.Client{Timeout: *timeout}
	successful, failed := 0, 0
	for _, rec := range fixtures {
		rec.RecordType = "A"
		rec.Class = "IN"
		if err := post(client, endpoint, rec, wantStatus); err != nil {
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", rec.Name, err)
			failed++
			continue
		}
		fmt.Printf("added %s -> %s (ttl %d)\n", rec.Name, rec.IP, rec.TTL)
		successful++
	}

	fmt.Printf("seeded %d records, %d failed\n", successful, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func post(client *http.Client, url string, rec seedRecord, wantStatus int) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}
