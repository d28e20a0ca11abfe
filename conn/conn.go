// Package conn implements the per-connection state machine from section
// 4.4: RECV_HEADERS, dispatch to the handler, SEND_RESPONSE, then either
// close or loop back to RECV_HEADERS for a kept-alive request.
//
// Grounded on the reference framework's internal/server/tcp/server.go
// (connHandler goroutine-per-connection loop) and internal/server/http/
// http.go (the Run/HandleRequest loop shape and its verdict handling).
package conn

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/karlpauls/ksah/httpproto"
	"github.com/karlpauls/ksah/internal/bufpool"
	"github.com/karlpauls/ksah/internal/clock"
	"github.com/karlpauls/ksah/internal/httputil"
	"github.com/karlpauls/ksah/internal/logutil"
	"github.com/karlpauls/ksah/request"
	"github.com/karlpauls/ksah/response"
)

// Handler processes one parsed request and drives the response to
// completion (it must call resp.End before returning).
type Handler func(req *request.Request, resp *response.Response)

// Options configures a Connection.
type Options struct {
	Timeout           time.Duration
	MaxConnectionTime time.Duration
	MaxHeaderSize     int
}

// Connection owns one socket and runs its state machine on the calling
// goroutine; Serve is meant to be invoked as `go conn.Serve()`.
type Connection struct {
	sock    net.Conn
	pool    *bufpool.Pool
	handler Handler
	opts    Options
	log     *logutil.Logger
}

// New constructs a Connection bound to sock.
func New(sock net.Conn, pool *bufpool.Pool, handler Handler, opts Options, log *logutil.Logger) *Connection {
	return &Connection{sock: sock, pool: pool, handler: handler, opts: opts, log: log}
}

// Serve runs RECV_HEADERS/SEND_RESPONSE to completion, closing the socket
// when the connection ends. Client-caused failures (bad requests, resets,
// timeouts) are logged at debug level, never panicked on.
func (c *Connection) Serve() {
	defer c.sock.Close()

	connStart := clock.Now()
	parser := request.NewParser(request.Limits{MaxHeaderSize: c.opts.MaxHeaderSize})
	resp := response.New(c.sock, c.opts.Timeout, connStart, c.opts.MaxConnectionTime)

	var pending []byte

	for {
		req := request.New()
		parser.Reset(req)

		verdict, extra, err := c.recvHeaders(parser, pending)
		pending = nil

		switch verdict {
		case request.OK:
			// fall through to handling below.
		case request.BadRequest, request.EntityTooLarge:
			c.log.Debug("%s: %v", c.sock.RemoteAddr(), err)
			c.sendError(resp, req, err)
			return
		default:
			if err != nil {
				c.log.Debug("%s: %v", c.sock.RemoteAddr(), err)
			}
			return
		}

		req.RemoteAddr = c.sock.RemoteAddr().String()

		// extra may hold more than this request's body: a pipelined next
		// request's header bytes can arrive in the same read as this one's
		// CRLFCRLF terminator. Whatever falls past ContentLength belongs to
		// that next request, not this one's Body, so it is carried forward
		// as pending instead of being handed to NewBody, which would
		// otherwise silently truncate and discard it.
		bodyPre := extra
		if len(extra) > req.ContentLength {
			bodyPre = extra[:req.ContentLength]
			pending = extra[req.ContentLength:]
		}

		awaitsContinue := parser.AwaitsContinue()
		req.Body = request.NewBody(c.sock, bodyPre, req.ContentLength, awaitsContinue, func() error {
			return response.Send100Continue(c.sock, c.opts.Timeout)
		})

		resp.Reset(response.RequestInfo{
			Proto:              req.Proto,
			KeepAliveRequested: req.KeepAliveRequested(),
		})

		panicked := true
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("%s: handler panic: %v", c.sock.RemoteAddr(), r)
				}
			}()
			c.handler(req, resp)
			panicked = false
		}()
		if panicked {
			if !resp.Committed() {
				c.sendError(resp, req, httpproto.ErrInternal)
			}
			return
		}

		if err := req.Body.Discard(); err != nil {
			return
		}

		if err := resp.End(); err != nil {
			return
		}

		if !resp.KeepAlive() {
			return
		}
	}
}

// recvHeaders implements RECV_HEADERS: check out a buffer, read with a
// deadline, feed the parser, loop on NeedMore, check the buffer back in
// every time the parser returns. leftover carries any pipelined bytes from
// the previous request's trailing read.
func (c *Connection) recvHeaders(parser *request.Parser, leftover []byte) (request.Verdict, []byte, error) {
	if len(leftover) > 0 {
		verdict, extra, err := parser.Feed(leftover, false)
		if verdict != request.NeedMore {
			return verdict, extra, err
		}
	}

	for {
		buf := c.pool.Checkout()

		if err := c.sock.SetReadDeadline(time.Now().Add(c.opts.Timeout)); err != nil {
			c.pool.Checkin(buf)
			return request.NeedMore, nil, err
		}

		n, err := c.sock.Read(buf.B)
		if err != nil {
			c.pool.Checkin(buf)

			if errors.Is(err, io.EOF) {
				return request.NeedMore, nil, httpproto.ErrPeerReset
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return request.NeedMore, nil, httpproto.ErrTimeout
			}

			return request.NeedMore, nil, httpproto.ErrPeerReset
		}

		bufferFull := n == len(buf.B)
		verdict, extra, ferr := parser.Feed(buf.B[:n], bufferFull)
		c.pool.Checkin(buf)

		if verdict != request.NeedMore {
			return verdict, extra, ferr
		}
	}
}

func (c *Connection) sendError(resp *response.Response, req *request.Request, err error) {
	code := httpproto.AsCode(err)
	if code == 0 {
		code = httpproto.StatusBadRequest
	}

	canned := httputil.CannedError(code)
	resp.Reset(response.RequestInfo{Proto: req.Proto})
	resp.SetCode(code)
	resp.SetHeader("Content-Type", httputil.ContentType(httputil.HTML, "utf-8"))
	resp.SetHeader("Content-Length", canned.ContentLength)

	if writeErr := resp.Write(canned.HTML); writeErr != nil {
		return
	}

	_ = resp.End()
}
