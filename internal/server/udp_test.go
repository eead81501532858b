package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danton11/RIND/internal/records"
	"github.com/Danton11/RIND/internal/resolver"
)

func strPtr(s string) *string { return &s }

// startTestServer seeds a store, starts a UDPServer on a loopback socket
// and returns the server address plus the stats collector. The server is
// torn down with the test.
func startTestServer(t *testing.T) (*net.UDPAddr, *DNSStats) {
	t.Helper()

	provider := records.NewFileProvider(filepath.Join(t.TempDir(), "dns_records.txt"))
	store := records.NewStore(provider, nil)
	_, err := store.Create(context.Background(), records.CreateRequest{
		Name: "example.com",
		IP:   strPtr("93.184.216.34"),
	})
	require.NoError(t, err)

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	stats := NewDNSStats()
	s := &UDPServer{Resolver: resolver.New(store), Stats: stats}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunOnConn(ctx, conn) }()

	t.Cleanup(func() {
		cancel()
		_ = s.Stop(2 * time.Second)
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Error("timeout waiting for RunOnConn to finish")
		}
	})

	return conn.LocalAddr().(*net.UDPAddr), stats
}

// exchange sends a raw payload to the server and reads one response.
func exchange(t *testing.T, addr *net.UDPAddr, payload []byte) ([]byte, error) {
	t.Helper()

	client, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write(payload)
	require.NoError(t, err)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 4096)
	n, err := client.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func packQuery(t *testing.T, name string) []byte {
	t.Helper()
	var m mdns.Msg
	m.SetQuestion(mdns.Fqdn(name), mdns.TypeA)
	m.Id = 0x4242
	payload, err := m.Pack()
	require.NoError(t, err)
	return payload
}

func TestUDPServerAnswersQuery(t *testing.T) {
	addr, stats := startTestServer(t)

	resp, err := exchange(t, addr, packQuery(t, "example.com"))
	require.NoError(t, err)

	var m mdns.Msg
	require.NoError(t, m.Unpack(resp))
	assert.Equal(t, uint16(0x4242), m.Id)
	assert.Equal(t, mdns.RcodeSuccess, m.Rcode)
	require.Len(t, m.Answer, 1)
	a, ok := m.Answer[0].(*mdns.A)
	require.True(t, ok)
	assert.Equal(t, "93.184.216.34", a.A.String())

	snap := stats.Snapshot()
	assert.Equal(t, uint64(1), snap.QueriesTotal)
	assert.Equal(t, uint64(1), snap.ResponsesOK)
}

func TestUDPServerNXDomain(t *testing.T) {
	addr, stats := startTestServer(t)

	resp, err := exchange(t, addr, packQuery(t, "missing.example.com"))
	require.NoError(t, err)

	var m mdns.Msg
	require.NoError(t, m.Unpack(resp))
	assert.Equal(t, mdns.RcodeNameError, m.Rcode)
	assert.Empty(t, m.Answer)

	assert.Equal(t, uint64(1), stats.Snapshot().ResponsesNX)
}

func TestUDPServerDropsGarbage(t *testing.T) {
	addr, stats := startTestServer(t)

	// An unparseable datagram gets no response at all.
	_, err := exchange(t, addr, []byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	ne, ok := err.(net.Error)
	require.True(t, ok)
	assert.True(t, ne.Timeout(), "expected a read timeout, not a response")

	assert.Eventually(t, func() bool {
		return stats.Snapshot().ParseErrors == 1
	}, 2*time.Second, 10*time.Millisecond, "parse errors must be counted")
	assert.Equal(t, uint64(0), stats.Snapshot().QueriesTotal)
}

func TestUDPServerConcurrentClients(t *testing.T) {
	addr, stats := startTestServer(t)

	const clients = 10
	errs := make(chan error, clients)
	for i := 0; i < clients; i++ {
		go func() {
			resp, err := exchange(t, addr, packQuery(t, "example.com"))
			if err == nil && len(resp) == 0 {
				err = net.ErrClosed
			}
			errs <- err
		}()
	}
	for i := 0; i < clients; i++ {
		assert.NoError(t, <-errs)
	}

	assert.Eventually(t, func() bool {
		return stats.Snapshot().QueriesTotal == clients
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUDPServerStopOnCancel(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	provider := records.NewFileProvider(filepath.Join(t.TempDir(), "dns_records.txt"))
	s := &UDPServer{Resolver: resolver.New(records.NewStore(provider, nil))}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.RunOnConn(ctx, conn) }()

	<-ctx.Done()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Error("timeout waiting for RunOnConn to finish")
	}
}

func TestUDPServerStopWithoutRun(t *testing.T) {
	s := &UDPServer{}
	assert.NoError(t, s.Stop(100*time.Millisecond), "Stop before Run must be a no-op")
}

func TestListenReusePort(t *testing.T) {
	conn, err := listenReusePort("127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()
	assert.NotNil(t, conn.LocalAddr())
}

func TestListenReusePortSharedAddress(t *testing.T) {
	conn1, err := listenReusePort("127.0.0.1:0")
	require.NoError(t, err)
	defer conn1.Close()

	addr := conn1.LocalAddr().String()
	conn2, err := listenReusePort(addr)
	if err != nil {
		t.Skipf("SO_REUSEPORT may not be fully supported here: %v", err)
	}
	defer conn2.Close()
}

func TestListenReusePortInvalidAddress(t *testing.T) {
	_, err := listenReusePort("invalid:address::")
	assert.Error(t, err)
}
