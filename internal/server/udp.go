// Package server owns the UDP serving pipeline and the process runner
// that ties the listeners together.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Danton11/RIND/internal/dns"
	"github.com/Danton11/RIND/internal/metrics"
	"github.com/Danton11/RIND/internal/pool"
	"github.com/Danton11/RIND/internal/resolver"
)

// queueDepth bounds the receive-to-dispatch handoff. When the queue is
// full the receive loop blocks, which pushes backpressure into the
// kernel socket buffer instead of dropping in userspace.
const queueDepth = 1024

// datagram is one received packet with its return address.
type datagram struct {
	payload []byte
	peer    *net.UDPAddr
}

// UDPServer answers DNS queries over UDP.
//
// Pipeline: a receive loop reads datagrams into pooled 512-byte buffers,
// copies each into a right-sized buffer and enqueues it on a bounded
// channel; a dispatcher drains the channel and spawns one worker per
// datagram. Workers parse, resolve, publish metrics and send the
// response. Responses are not ordered across clients.
type UDPServer struct {
	Resolver *resolver.Resolver // Query answerer
	Stats    *DNSStats          // Optional serving statistics
	Sink     metrics.Sink       // Optional metrics sink

	conn    *net.UDPConn
	bufPool *pool.Pool[*[]byte]
	wg      sync.WaitGroup // tracks in-flight workers
	loopWG  sync.WaitGroup // tracks the dispatcher loop
}

// Run starts the UDP server, listening on the given address with
// SO_REUSEPORT so that additional instances can share it.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	conn, err := listenReusePort(addr)
	if err != nil {
		return err
	}
	return s.RunOnConn(ctx, conn)
}

// RunOnConn runs the server on an existing UDP connection. Useful for
// tests and callers that manage the socket themselves. Blocks until ctx
// is cancelled; in-flight workers are then waited for by Stop.
func (s *UDPServer) RunOnConn(ctx context.Context, conn *net.UDPConn) error {
	s.conn = conn
	defer conn.Close()

	if s.Sink == nil {
		s.Sink = metrics.NopSink{}
	}
	if s.bufPool == nil {
		s.bufPool = pool.NewBytes(dns.DefaultUDPPayloadSize)
	}

	queue := make(chan datagram, queueDepth)
	s.loopWG.Add(1)
	go s.dispatch(ctx, queue)

	for {
		if ctx.Err() != nil {
			break
		}

		d, ok := s.receive(ctx, conn)
		if !ok {
			continue
		}

		select {
		case queue <- d:
		case <-ctx.Done():
		}
	}

	close(queue)
	s.loopWG.Wait()
	return nil
}

// receive reads one datagram using a pooled buffer and copies it out into
// a buffer sized to the received length. Returns ok=false on timeouts and
// transient errors so the caller just retries.
func (s *UDPServer) receive(ctx context.Context, conn *net.UDPConn) (datagram, bool) {
	bufPtr := s.bufPool.Get()
	buf := *bufPtr
	defer s.bufPool.Put(bufPtr)

	// The deadline bounds how long a shutdown waits for the next read.
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	n, remote, err := conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return datagram{}, false
		}
		if ctx.Err() == nil {
			slog.Debug("udp read failed", "err", err)
		}
		return datagram{}, false
	}
	if remote == nil || n == 0 {
		return datagram{}, false
	}

	payload := make([]byte, n)
	copy(payload, buf[:n])
	return datagram{payload: payload, peer: remote}, true
}

// dispatch drains the queue, spawning one worker per datagram, until the
// queue is closed.
func (s *UDPServer) dispatch(ctx context.Context, queue <-chan datagram) {
	defer s.loopWG.Done()
	for d := range queue {
		s.wg.Add(1)
		go s.handle(ctx, d)
	}
}

// handle processes a single datagram: parse, resolve, account, respond.
// Unparseable datagrams are dropped without a response.
func (s *UDPServer) handle(ctx context.Context, d datagram) {
	defer s.wg.Done()
	s.Sink.IncActiveConnections()
	defer s.Sink.DecActiveConnections()

	start := time.Now()
	q, err := dns.ParseQuery(d.payload)
	if err != nil {
		s.Sink.IncPacketErrors()
		if s.Stats != nil {
			s.Stats.RecordParseError()
		}
		slog.Debug("dropping unparseable datagram",
			"peer", d.peer, "len", len(d.payload), "err", err)
		return
	}

	queryType := classifyQuery(q)
	resp, rcode := s.Resolver.Answer(q)
	elapsed := time.Since(start)

	s.Sink.ObserveQuery(queryType, elapsed.Seconds())
	s.Sink.CountResponse(rcode.String())
	switch rcode {
	case dns.RCodeNXDomain:
		s.Sink.IncNXDomain()
	case dns.RCodeServFail:
		s.Sink.IncServFail()
	}
	if s.Stats != nil {
		s.Stats.RecordQuery(rcode, elapsed)
	}

	if _, err := s.conn.WriteToUDP(resp, d.peer); err != nil {
		s.Sink.IncPacketErrors()
		if ctx.Err() == nil {
			slog.Warn("failed to send response", "peer", d.peer, "err", err)
		}
	}
}

// classifyQuery returns the metrics label for the query's question type.
func classifyQuery(q dns.Query) string {
	if len(q.Questions) == 0 {
		return "OTHER"
	}
	return dns.TypeString(q.Questions[0].Type)
}

// Stop gracefully shuts down the UDP server, waiting up to timeout for
// in-flight workers to finish. A zero timeout waits indefinitely.
func (s *UDPServer) Stop(timeout time.Duration) error {
	if s.conn == nil {
		return nil
	}
	_ = s.conn.Close()

	if timeout <= 0 {
		s.wg.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("udp server: timeout waiting for in-flight requests")
	}
}

// listenReusePort opens the datagram socket with SO_REUSEPORT enabled so
// multiple server processes can share the address, with the kernel
// spreading datagrams across them.
func listenReusePort(addr string) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
		},
	}
	pc, err := lc.ListenPacket(context.Background(), "udp", addr)
	if err != nil {
		return nil, err
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, errors.New("listener is not a UDP connection")
	}
	return conn, nil
}
