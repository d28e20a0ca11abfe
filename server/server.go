// Package server implements the Acceptor/Server described in section 4.5:
// binds a listening socket, applies per-connection TCP options, enforces
// maxConnections backpressure, and coordinates graceful shutdown.
//
// Grounded on the reference framework's internal/server/tcp/server.go
// (open-connections set, Stop/GracefulShutdown split) and http/server/
// tcpserver.go (accept-loop/handler split, waitgroup-gated shutdown).
package server

import (
	"context"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/karlpauls/ksah/conn"
	"github.com/karlpauls/ksah/httpproto"
	"github.com/karlpauls/ksah/internal/bufpool"
	"github.com/karlpauls/ksah/internal/httputil"
	"github.com/karlpauls/ksah/internal/logutil"
	"github.com/karlpauls/ksah/response"
)

// SocketOptions carries the TCP options section 6's CLI surface exposes.
type SocketOptions struct {
	KeepAlive    bool
	NoDelay      bool
	ReuseAddress bool
	SendBuffer   int
	RecvBuffer   int
}

// Options configures a Server.
type Options struct {
	Socket            SocketOptions
	Backlog           int
	BufferCacheBytes  int
	MaxConnections    int
	Timeout           time.Duration
	MaxConnectionTime time.Duration
}

// Server owns the listening socket, the request-buffer pool and the set of
// currently-open connections.
type Server struct {
	listener net.Listener
	handler  conn.Handler
	pool     *bufpool.Pool
	opts     Options
	log      *logutil.Logger

	mu      sync.Mutex
	sockets map[net.Conn]struct{}
	wg      sync.WaitGroup
	closing bool
}

// New binds addr and constructs a Server ready to Serve. The backlog option
// is stored in the server's options but not applied: Go's net package hands
// backlog tuning to the kernel and does not expose a portable knob for it
// (see DESIGN.md).
func New(addr string, opts Options, handler conn.Handler, log *logutil.Logger) (*Server, error) {
	lc := net.ListenConfig{}
	if opts.Socket.ReuseAddress {
		lc.Control = setReuseAddr
	}

	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	pool := bufpool.New(opts.BufferCacheBytes, opts.Socket.RecvBuffer)

	return &Server{
		listener: listener,
		handler:  handler,
		pool:     pool,
		opts:     opts,
		log:      log,
		sockets:  make(map[net.Conn]struct{}),
	}, nil
}

// setReuseAddr is a net.ListenConfig.Control callback applying SO_REUSEADDR
// to the not-yet-bound listening socket, the raw-fd Control pattern used for
// socket options net.ListenConfig has no dedicated field for.
func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error

	if err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}

	return sockErr
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until the listener is closed. A transient
// Accept error on a still-open listener is logged and the loop continues;
// Serve only returns, with nil, once Close has torn down the listener.
func (s *Server) Serve() error {
	for {
		sock, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()

			if closing {
				s.wg.Wait()
				return nil
			}

			s.log.Warn("accept: %v", err)
			continue
		}

		if tcp, ok := sock.(*net.TCPConn); ok {
			s.applySocketOptions(tcp)
		}

		s.mu.Lock()
		overCapacity := s.opts.MaxConnections > 0 && len(s.sockets) >= s.opts.MaxConnections
		s.sockets[sock] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)

		if overCapacity {
			s.log.Warn("%s: maxConnections reached, sending 503", sock.RemoteAddr())
			go s.rejectOverCapacity(sock)
			continue
		}

		c := conn.New(sock, s.pool, s.handler, conn.Options{
			Timeout:           s.opts.Timeout,
			MaxConnectionTime: s.opts.MaxConnectionTime,
			MaxHeaderSize:     s.opts.Socket.RecvBuffer,
		}, s.log)

		go s.run(sock, c)
	}
}

func (s *Server) run(sock net.Conn, c *conn.Connection) {
	defer s.wg.Done()
	defer s.forget(sock)

	c.Serve()
}

// rejectOverCapacity implements the maxConnections backpressure rule: the
// fresh connection is handed a replacement handler that immediately emits
// 503 and closes, instead of being passed to the normal state machine.
func (s *Server) rejectOverCapacity(sock net.Conn) {
	defer s.wg.Done()
	defer s.forget(sock)
	defer sock.Close()

	canned := httputil.CannedError(httpproto.StatusServiceUnavailable)
	resp := response.New(sock, s.opts.Timeout, time.Now(), 0)
	resp.Reset(response.RequestInfo{})
	resp.SetCode(httpproto.StatusServiceUnavailable)
	resp.SetHeader("Content-Type", httputil.ContentType(httputil.HTML, "utf-8"))
	resp.SetHeader("Content-Length", canned.ContentLength)

	if err := resp.Write(canned.HTML); err != nil {
		return
	}

	_ = resp.End()
}

func (s *Server) forget(sock net.Conn) {
	s.mu.Lock()
	delete(s.sockets, sock)
	s.mu.Unlock()
}

func (s *Server) applySocketOptions(tcp *net.TCPConn) {
	_ = tcp.SetKeepAlive(s.opts.Socket.KeepAlive)
	_ = tcp.SetNoDelay(s.opts.Socket.NoDelay)

	if s.opts.Socket.SendBuffer > 0 {
		_ = tcp.SetWriteBuffer(s.opts.Socket.SendBuffer)
	}
	if s.opts.Socket.RecvBuffer > 0 {
		_ = tcp.SetReadBuffer(s.opts.Socket.RecvBuffer)
	}
}

// Close closes the listening socket and every currently-open connection,
// best-effort.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closing = true
	sockets := make([]net.Conn, 0, len(s.sockets))
	for sock := range s.sockets {
		sockets = append(sockets, sock)
	}
	s.mu.Unlock()

	err := s.listener.Close()

	for _, sock := range sockets {
		_ = sock.Close()
	}

	return err
}

// AwaitClose blocks until every connection goroutine has returned or
// timeout elapses, returning true on the former.
func (s *Server) AwaitClose(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
